// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package utils

import (
	"encoding/hex"
	"strings"

	"github.com/yourbasic/graph"
	"github.com/zeebo/blake3"
)

// BFSWithDepth performs a breadth-first search on the graph, but its visit
// function is passed the current depth level as a second argument.
// Consequently, the current depth can be used for deciding whether or not to
// proceed past a certain depth.
//
//	utils.BFSWithDepth(g, 1, func(value int, depth int) bool {
//		fmt.Println(value)
//		return depth > 3
//	})
//
// With the visit function from the example, the BFS traversal will stop once a
// depth greater than 3 is reached. Note that depth is calculated by treating
// the start node as having depth 0.
func BFSWithDepth(g graph.Iterator, start int, visit func(int, int) bool) {
	queue := make([]int, 0)
	visited := make(map[int]bool)
	depths := make(map[int]int)

	visited[start] = true
	queue = append(queue, start)
	depths[start] = 0

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		// Stop traversing the graph if the visit function returns true.
		if stop := visit(node, depths[node]); stop {
			break
		}

		g.Visit(node, func(adj int, _ int64) bool {
			if _, ok := visited[adj]; !ok {
				visited[adj] = true
				depths[adj] = depths[node] + 1
				queue = append(queue, adj)
			}
			return false
		})
	}
}

// Reachable marks every vertex of `g` that can be reached from `start`,
// `start` included.
func Reachable(g graph.Iterator, start int) []bool {
	res := make([]bool, g.Order())

	BFSWithDepth(g, start, func(node int, _ int) bool {
		res[node] = true
		return false
	})

	return res
}

// Digest returns a hex encoded BLAKE3 hash of `lines`, in order.
func Digest(lines []string) string {
	hash := blake3.Sum256([]byte(strings.Join(lines, "")))
	return hex.EncodeToString(hash[:])
}
