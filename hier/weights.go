// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hier

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/emer/csrl/conn"
	"github.com/emer/csrl/rl"
	"github.com/emer/emergent/weights"
	"github.com/goki/gi/gi"
	"github.com/goki/ki/indent"
)

// The weights file has one "layer" per hierarchy layer plus "Input", each
// with one "projection" per set of adapting values, named by what they
// are: FF, Rec, Lat (coder), FeedBack, Predictive (nodes), Unit.FF,
// Unit.Lat, Unit.Act (units), with a ".Tr" projection holding the
// matching traces.  Single values (Thr, Unit.Q, Unit.Bias, Unit.Thr,
// Unit.AvgSurprise) are written as one connection from index 0, as is the
// state carried from one tick to the next (StatePrev, Node.StatePrev,
// Node.Out, Node.Attend, Unit.PrevQ, Unit.Action, Unit.ExplAction, the
// input Vals, and the top layer's Reward.Offset and Reward.Prev), so a
// hierarchy read back continues exactly as the one written.  Values are
// written at full float32 precision.

// wtsPrjn is one named set of adapting values in the weights file
type wtsPrjn interface {
	Name() string
	WriteWtsJSON(w io.Writer, depth int)
	SetWts(pw *weights.Prjn) error
}

// connSet is a set of connection weights (or traces, if Tr) indexed by receiver
type connSet struct {
	From  string
	N     int
	Tr    bool
	Conns func(ri int) conn.Conns
}

func (cs *connSet) Name() string {
	if cs.Tr {
		return cs.From + ".Tr"
	}
	return cs.From
}

func (cs *connSet) vidx() int {
	if cs.Tr {
		return 1
	}
	return 0
}

func (cs *connSet) WriteWtsJSON(w io.Writer, depth int) {
	vi := cs.vidx()
	writeRs(w, depth, cs.Name(), cs.N, func(ri int) ([]int32, []float32) {
		ccs := cs.Conns(ri)
		si := make([]int32, len(ccs))
		for ci := range ccs {
			si[ci] = ccs[ci].Idx
		}
		return si, ccs.Vals(vi, nil)
	})
}

func (cs *connSet) SetWts(pw *weights.Prjn) error {
	vi := cs.vidx()
	for i := range pw.Rs {
		pr := &pw.Rs[i]
		if pr.Ri < 0 || pr.Ri >= cs.N {
			return fmt.Errorf("%w: weights %s: receiver %d out of range", ErrConfig, cs.Name(), pr.Ri)
		}
		ccs := cs.Conns(pr.Ri)
		if len(pr.Si) != len(ccs) || len(pr.Wt) != len(ccs) {
			return fmt.Errorf("%w: weights %s: receiver %d has %d conns, file has %d", ErrConfig, cs.Name(), pr.Ri, len(ccs), len(pr.Si))
		}
		for ci := range ccs {
			if int(ccs[ci].Idx) != pr.Si[ci] {
				return fmt.Errorf("%w: weights %s: receiver %d conn %d is from %d, file has %d", ErrConfig, cs.Name(), pr.Ri, ci, ccs[ci].Idx, pr.Si[ci])
			}
			ccs[ci].SetVarByIndex(vi, pr.Wt[ci])
		}
	}
	return nil
}

// valSet is a set of single values indexed by receiver
type valSet struct {
	From string
	N    int
	Val  func(ri int) *float32
}

func (vs *valSet) Name() string { return vs.From }

func (vs *valSet) WriteWtsJSON(w io.Writer, depth int) {
	si := []int32{0}
	writeRs(w, depth, vs.From, vs.N, func(ri int) ([]int32, []float32) {
		return si, []float32{*vs.Val(ri)}
	})
}

func (vs *valSet) SetWts(pw *weights.Prjn) error {
	for i := range pw.Rs {
		pr := &pw.Rs[i]
		if pr.Ri < 0 || pr.Ri >= vs.N || len(pr.Wt) != 1 {
			return fmt.Errorf("%w: weights %s: bad receiver %d", ErrConfig, vs.From, pr.Ri)
		}
		*vs.Val(pr.Ri) = pr.Wt[0]
	}
	return nil
}

// bothSets returns the weight and trace sets of the same connections
func bothSets(from string, n int, fun func(ri int) conn.Conns) []wtsPrjn {
	return []wtsPrjn{&connSet{From: from, N: n, Conns: fun}, &connSet{From: from, N: n, Tr: true, Conns: fun}}
}

// unitSets returns the sets for n units, each with the same number of cells.
// Cell ci of unit ui is receiver ui * NCells + ci.
func unitSets(n int, unit func(ui int) *rl.Unit) []wtsPrjn {
	if n == 0 {
		return nil
	}
	nc := len(unit(0).Cells)
	cell := func(ri int) *rl.Cell {
		return &unit(ri / nc).Cells[ri%nc]
	}
	nr := n * nc
	var ps []wtsPrjn
	ps = append(ps, bothSets("Unit.FF", nr, func(ri int) conn.Conns { return cell(ri).FF })...)
	ps = append(ps, bothSets("Unit.Lat", nr, func(ri int) conn.Conns { return cell(ri).Lat })...)
	ps = append(ps, bothSets("Unit.Act", nr, func(ri int) conn.Conns { return cell(ri).Act })...)
	ps = append(ps,
		&valSet{From: "Unit.Q", N: nr, Val: func(ri int) *float32 { return &cell(ri).Q.Wt }},
		&valSet{From: "Unit.Q.Tr", N: nr, Val: func(ri int) *float32 { return &cell(ri).Q.Tr }},
		&valSet{From: "Unit.Bias", N: nr, Val: func(ri int) *float32 { return &cell(ri).Bias.Wt }},
		&valSet{From: "Unit.Bias.Tr", N: nr, Val: func(ri int) *float32 { return &cell(ri).Bias.Tr }},
		&valSet{From: "Unit.Thr", N: nr, Val: func(ri int) *float32 { return &cell(ri).Thr }},
		&valSet{From: "Unit.AvgSurprise", N: n, Val: func(ri int) *float32 { return &unit(ri).AvgSurprise }},
		&valSet{From: "Unit.PrevQ", N: n, Val: func(ri int) *float32 { return &unit(ri).PrevQ }},
	)
	// action ai of unit ui is receiver ui * NActions + ai
	na := len(unit(0).Actions)
	if na > 0 {
		act := func(ri int) *rl.Action {
			return &unit(ri / na).Actions[ri%na]
		}
		ps = append(ps,
			&valSet{From: "Unit.Action", N: n * na, Val: func(ri int) *float32 { return &act(ri).State }},
			&valSet{From: "Unit.ExplAction", N: n * na, Val: func(ri int) *float32 { return &act(ri).ExplState }},
		)
	}
	return ps
}

// wtsPrjns returns all the adapting value sets of the layer
func (ly *Layer) wtsPrjns() []wtsPrjn {
	cd := &ly.Coder
	nh := cd.NHid()
	nn := len(ly.Nodes)
	var ps []wtsPrjn
	ps = append(ps, bothSets("FF", nh, func(ri int) conn.Conns { return cd.Hidden[ri].FF })...)
	ps = append(ps, bothSets("Rec", nh, func(ri int) conn.Conns { return cd.Hidden[ri].Rec })...)
	ps = append(ps, bothSets("Lat", nh, func(ri int) conn.Conns { return cd.Hidden[ri].Lat })...)
	ps = append(ps,
		&valSet{From: "Thr", N: nh, Val: func(ri int) *float32 { return &cd.Hidden[ri].Thr }},
		&valSet{From: "StatePrev", N: nh, Val: func(ri int) *float32 { return &cd.Hidden[ri].StatePrev }},
	)
	ps = append(ps, bothSets("FeedBack", nn, func(ri int) conn.Conns { return ly.Nodes[ri].FeedBack })...)
	ps = append(ps, bothSets("Predictive", nn, func(ri int) conn.Conns { return ly.Nodes[ri].Predictive })...)
	ps = append(ps,
		&valSet{From: "Node.StatePrev", N: nn, Val: func(ri int) *float32 { return &ly.Nodes[ri].StatePrev }},
		&valSet{From: "Node.Out", N: nn, Val: func(ri int) *float32 { return &ly.Nodes[ri].Out }},
		&valSet{From: "Node.Attend", N: nn, Val: func(ri int) *float32 { return &ly.Nodes[ri].Attend }},
	)
	ps = append(ps, unitSets(nn, func(ui int) *rl.Unit { return &ly.Nodes[ui].Unit })...)
	return ps
}

// wtsPrjns returns all the adapting value sets of the input layer
func (il *InputLayer) wtsPrjns() []wtsPrjn {
	nn := len(il.Nodes)
	ps := bothSets("FeedBack", nn, func(ri int) conn.Conns { return il.Nodes[ri].FeedBack })
	ps = append(ps,
		&valSet{From: "Vals", N: nn, Val: func(ri int) *float32 { return &il.Vals[ri] }},
		&valSet{From: "Node.StatePrev", N: nn, Val: func(ri int) *float32 { return &il.Nodes[ri].StatePrev }},
		&valSet{From: "Node.Out", N: nn, Val: func(ri int) *float32 { return &il.Nodes[ri].Out }},
	)
	ps = append(ps, unitSets(nn, func(ui int) *rl.Unit { return &il.Nodes[ui].Unit })...)
	return ps
}

// layerPrjns returns the value sets of layer li, with the reward pathway
// on the top layer
func (hr *Hierarchy) layerPrjns(li int) []wtsPrjn {
	ps := hr.Layers[li].wtsPrjns()
	if li == len(hr.Layers)-1 {
		n := len(hr.RewardOffsets)
		ps = append(ps,
			&valSet{From: "Reward.Offset", N: n, Val: func(ri int) *float32 { return &hr.RewardOffsets[ri] }},
			&valSet{From: "Reward.Prev", N: n, Val: func(ri int) *float32 { return &hr.topSrcPrev[ri] }},
		)
	}
	return ps
}

// writeRs writes one projection, getting the sending indexes and values for
// each receiver from fun.  Leaves the projection unterminated.
func writeRs(w io.Writer, depth int, from string, nr int, fun func(ri int) ([]int32, []float32)) {
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"From\": %q,\n", from)))
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("\"Rs\": [\n"))
	depth++
	for ri := 0; ri < nr; ri++ {
		si, wts := fun(ri)
		nc := len(si)
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("{\n"))
		depth++
		w.Write(indent.TabBytes(depth))
		w.Write([]byte(fmt.Sprintf("\"Ri\": %v,\n", ri)))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte(fmt.Sprintf("\"N\": %v,\n", nc)))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"Si\": [ "))
		for ci := 0; ci < nc; ci++ {
			w.Write([]byte(fmt.Sprintf("%v", si[ci])))
			if ci == nc-1 {
				w.Write([]byte(" "))
			} else {
				w.Write([]byte(", "))
			}
		}
		w.Write([]byte("],\n"))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"Wt\": [ "))
		for ci := 0; ci < nc; ci++ {
			w.Write([]byte(strconv.FormatFloat(float64(wts[ci]), 'g', -1, 32)))
			if ci == nc-1 {
				w.Write([]byte(" "))
			} else {
				w.Write([]byte(", "))
			}
		}
		w.Write([]byte("]\n"))
		depth--
		w.Write(indent.TabBytes(depth))
		if ri == nr-1 {
			w.Write([]byte("}\n"))
		} else {
			w.Write([]byte("},\n"))
		}
	}
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("]\n"))
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("}"))
}

// writeLayer writes one layer with its value sets.  Leaves the layer unterminated.
func writeLayer(w io.Writer, depth int, name string, ps []wtsPrjn) {
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Layer\": %q,\n", name)))
	w.Write(indent.TabBytes(depth))
	np := len(ps)
	if np == 0 {
		w.Write([]byte("\"Prjns\": null\n"))
	} else {
		w.Write([]byte("\"Prjns\": [\n"))
		depth++
		for pi, pj := range ps {
			pj.WriteWtsJSON(w, depth)
			if pi == np-1 {
				w.Write([]byte("\n"))
			} else {
				w.Write([]byte(",\n"))
			}
		}
		depth--
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("]\n"))
	}
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("}"))
}

// setLayer sets the value sets from the decoded layer, by projection name
func setLayer(lw *weights.Layer, ps []wtsPrjn) error {
	pm := make(map[string]wtsPrjn, len(ps))
	for _, pj := range ps {
		pm[pj.Name()] = pj
	}
	var err error
	for pi := range lw.Prjns {
		pw := &lw.Prjns[pi]
		pj, ok := pm[pw.From]
		if !ok {
			err = fmt.Errorf("%w: weights layer %s: unknown projection %s", ErrConfig, lw.Layer, pw.From)
			continue
		}
		if er := pj.SetWts(pw); er != nil {
			err = er
		}
	}
	return err
}

//////////////////////////////////////////////////////////////////////////////////////
//  Weights File

// SaveWtsJSON saves all weights, traces, thresholds and carried state
// to a JSON-formatted file.  If filename has .gz extension, then file is gzip compressed.
func (hr *Hierarchy) SaveWtsJSON(filename gi.FileName) error {
	fp, err := os.Create(string(filename))
	if err != nil {
		log.Println(err)
		return err
	}
	defer fp.Close()
	ext := filepath.Ext(string(filename))
	if ext == ".gz" {
		gzr := gzip.NewWriter(fp)
		defer gzr.Close()
		hr.WriteWtsJSON(gzr)
	} else {
		hr.WriteWtsJSON(fp)
	}
	return nil
}

// OpenWtsJSON opens weights saved by SaveWtsJSON into a hierarchy built
// with the same structure.  If filename has .gz extension, then file is gzip uncompressed.
func (hr *Hierarchy) OpenWtsJSON(filename gi.FileName) error {
	fp, err := os.Open(string(filename))
	if err != nil {
		log.Println(err)
		return err
	}
	defer fp.Close()
	ext := filepath.Ext(string(filename))
	if ext == ".gz" {
		gzr, err := gzip.NewReader(fp)
		if err != nil {
			log.Println(err)
			return err
		}
		defer gzr.Close()
		return hr.ReadWtsJSON(gzr)
	}
	return hr.ReadWtsJSON(fp)
}

// WriteWtsJSON writes all the adapting values in a JSON text format
func (hr *Hierarchy) WriteWtsJSON(w io.Writer) {
	depth := 0
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Network\": %q,\n", hr.Nm)))
	if len(hr.MetaData) > 0 {
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"MetaData\": {\n"))
		depth++
		keys := make([]string, 0, len(hr.MetaData))
		for k := range hr.MetaData {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for ki, k := range keys {
			w.Write(indent.TabBytes(depth))
			w.Write([]byte(fmt.Sprintf("%q: %q", k, hr.MetaData[k])))
			if ki == len(keys)-1 {
				w.Write([]byte("\n"))
			} else {
				w.Write([]byte(",\n"))
			}
		}
		depth--
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("},\n"))
	}
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("\"Layers\": [\n"))
	depth++
	writeLayer(w, depth, hr.Input.Nm, hr.Input.wtsPrjns())
	for li, ly := range hr.Layers {
		w.Write([]byte(",\n"))
		writeLayer(w, depth, ly.Nm, hr.layerPrjns(li))
	}
	w.Write([]byte("\n"))
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("]\n"))
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("}\n"))
}

// ReadWtsJSON reads weights written by WriteWtsJSON, using SetWts
func (hr *Hierarchy) ReadWtsJSON(r io.Reader) error {
	nw, err := weights.NetReadJSON(r)
	if err != nil {
		return err // note: already logged
	}
	err = hr.SetWts(nw)
	if err != nil {
		log.Println(err)
	}
	return err
}

// SetWts sets all the adapting values from weights.Network decoded values
func (hr *Hierarchy) SetWts(nw *weights.Network) error {
	if !hr.built {
		return fmt.Errorf("%w: SetWts called before Build", ErrConfig)
	}
	if nw.MetaData != nil {
		if hr.MetaData == nil {
			hr.MetaData = make(map[string]string)
		}
		for mk, mv := range nw.MetaData {
			hr.MetaData[mk] = mv
		}
	}
	var err error
	for li := range nw.Layers {
		lw := &nw.Layers[li]
		var ps []wtsPrjn
		if lw.Layer == hr.Input.Nm {
			ps = hr.Input.wtsPrjns()
		} else if ly := hr.LayerByName(lw.Layer); ly != nil {
			ps = hr.layerPrjns(ly.Index)
		} else {
			err = fmt.Errorf("%w: weights: unknown layer %s", ErrConfig, lw.Layer)
			continue
		}
		if er := setLayer(lw, ps); er != nil {
			err = er
		}
	}
	hr.prevFmNodes()
	return err
}

// prevFmNodes restores the previous-tick buffers from the node outputs
// after reading state
func (hr *Hierarchy) prevFmNodes() {
	for _, ly := range hr.Layers {
		ly.OutsFmNodes()
		for ni := range ly.Nodes {
			ly.Nodes[ni].OutPrev = ly.Nodes[ni].Out
		}
		copy(ly.outsPrev, ly.outs)
	}
	for ni := range hr.Input.Nodes {
		in := &hr.Input.Nodes[ni]
		in.OutPrev = in.Out
	}
}

// LayerByName returns the layer of given name, or nil
func (hr *Hierarchy) LayerByName(name string) *Layer {
	for _, ly := range hr.Layers {
		if ly.Nm == name {
			return ly
		}
	}
	return nil
}
