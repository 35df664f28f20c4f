// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hier

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/c2h5oh/datasize"
	"github.com/emer/csrl/conn"
)

// NConns returns the number of coder, node and unit connections of the layer
func (ly *Layer) NConns() (coder, nodes, units int) {
	coder = ly.Coder.NConns()
	for ni := range ly.Nodes {
		nd := &ly.Nodes[ni]
		nodes += len(nd.FeedBack) + len(nd.Predictive)
		units += nd.Unit.NConns()
	}
	return
}

// NConns returns the number of node and unit connections of the input layer
func (il *InputLayer) NConns() (nodes, units int) {
	for ni := range il.Nodes {
		in := &il.Nodes[ni]
		nodes += len(in.FeedBack)
		units += in.Unit.NConns()
	}
	return
}

// SizeReport returns a string reporting the number of nodes and
// connections of each layer, and the total memory footprint of connections.
func (hr *Hierarchy) SizeReport() string {
	var b strings.Builder
	csz := int(unsafe.Sizeof(conn.Connection{}))
	tot := 0
	nds, uns := hr.Input.NConns()
	tot += nds + uns
	fmt.Fprintf(&b, "%14s:\t Nodes: %d\t NodeConns: %d\t UnitConns: %d\t Mem: %v\n", hr.Input.Nm, len(hr.Input.Nodes), nds, uns, (datasize.ByteSize)((nds+uns)*csz).HumanReadable())
	for _, ly := range hr.Layers {
		cds, nds, uns := ly.NConns()
		n := cds + nds + uns
		tot += n
		fmt.Fprintf(&b, "%14s:\t Nodes: %d\t CoderConns: %d\t NodeConns: %d\t UnitConns: %d\t Mem: %v\n", ly.Nm, len(ly.Nodes), cds, nds, uns, (datasize.ByteSize)(n*csz).HumanReadable())
	}
	fmt.Fprintf(&b, "\n\n%14s:\t Conns: %d\t Mem: %v\n", hr.Nm, tot, (datasize.ByteSize)(tot*csz).HumanReadable())
	return b.String()
}
