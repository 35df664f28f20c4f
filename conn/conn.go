// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"fmt"
)

// conn.Connection is one weighted edge from the unit that owns it to the
// unit at Idx in the population it addresses.  Connections are stored on the
// sending side: each unit owns the slice of its own outgoing edges.
type Connection struct {
	Idx int32   `desc:"index of the addressed unit within its population"`
	Wt  float32 `desc:"connection weight"`
	Tr  float32 `desc:"eligibility trace -- decays geometrically each learning step and accumulates co-activity"`
}

var ConnVars = []string{"Wt", "Tr"}

var ConnVarsMap map[string]int

func init() {
	ConnVarsMap = make(map[string]int, len(ConnVars))
	for i, v := range ConnVars {
		ConnVarsMap[v] = i
	}
}

// ConnVarByName returns the index of the variable in the Connection, or error
func ConnVarByName(varNm string) (int, error) {
	i, ok := ConnVarsMap[varNm]
	if !ok {
		return 0, fmt.Errorf("Connection VarByName: variable name: %v not valid", varNm)
	}
	return i, nil
}

// VarByIndex returns variable using index (0 = first variable in ConnVars list)
func (cn *Connection) VarByIndex(idx int) float32 {
	switch idx {
	case 0:
		return cn.Wt
	case 1:
		return cn.Tr
	}
	return 0
}

// SetVarByIndex sets variable using index (0 = first variable in ConnVars list)
func (cn *Connection) SetVarByIndex(idx int, val float32) {
	switch idx {
	case 0:
		cn.Wt = val
	case 1:
		cn.Tr = val
	}
}

// Conns is the set of outgoing connections owned by one unit
type Conns []Connection

// Sum returns the weighted sum of vals over the addressed units
func (cs Conns) Sum(vals []float32) float32 {
	sum := float32(0)
	for ci := range cs {
		c := &cs[ci]
		sum += c.Wt * vals[c.Idx]
	}
	return sum
}

// SendTo adds the weighted activity act into vals for each addressed unit
func (cs Conns) SendTo(vals []float32, act float32) {
	if act == 0 {
		return
	}
	for ci := range cs {
		c := &cs[ci]
		vals[c.Idx] += c.Wt * act
	}
}

// Validate checks that every index addresses a unit in a population of size n
func (cs Conns) Validate(n int) error {
	for ci := range cs {
		if idx := cs[ci].Idx; idx < 0 || int(idx) >= n {
			return fmt.Errorf("conn.Conns: connection %d index %d out of range [0, %d)", ci, idx, n)
		}
	}
	return nil
}

// ZeroTrace resets all traces to 0
func (cs Conns) ZeroTrace() {
	for ci := range cs {
		cs[ci].Tr = 0
	}
}

// Vals copies the given variable across all connections into vals,
// which is resized as needed and returned.
func (cs Conns) Vals(vidx int, vals []float32) []float32 {
	if cap(vals) < len(cs) {
		vals = make([]float32, len(cs))
	} else {
		vals = vals[:len(cs)]
	}
	for ci := range cs {
		vals[ci] = cs[ci].VarByIndex(vidx)
	}
	return vals
}
