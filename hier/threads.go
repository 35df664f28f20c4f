// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hier

import (
	"fmt"
	"sort"
	"sync"

	"github.com/emer/emergent/timer"
	"github.com/goki/ki/ints"
)

//////////////////////////////////////////////////////////////////////////////////////
//  Threading infrastructure

// ThrFun calls fun for each index in [0, n), splitting the range into
// NThreads contiguous chunks run by separate go routines if NThreads > 1,
// and otherwise just iterating in the current thread.  fun must only
// write state owned by its index, and must not draw random numbers.
func (hr *Hierarchy) ThrFun(n int, fun func(i int), funame string) {
	hr.FunTimerStart(funame)
	nthr := ints.MinInt(hr.NThreads, n)
	if nthr <= 1 {
		for i := 0; i < n; i++ {
			fun(i)
		}
	} else {
		var wg sync.WaitGroup
		chunk := (n + nthr - 1) / nthr
		for st := 0; st < n; st += chunk {
			ed := ints.MinInt(st+chunk, n)
			wg.Add(1)
			go func(st, ed int) {
				for i := st; i < ed; i++ {
					fun(i)
				}
				wg.Done()
			}(st, ed)
		}
		wg.Wait()
	}
	hr.FunTimerStop(funame)
}

// ThrNodeFun calls fun on each node of the layer, using ThrFun
func (hr *Hierarchy) ThrNodeFun(ly *Layer, fun func(nd *Node, ni int), funame string) {
	hr.ThrFun(len(ly.Nodes), func(ni int) {
		fun(&ly.Nodes[ni], ni)
	}, funame)
}

// TimerReport reports the amount of time spent in each function
func (hr *Hierarchy) TimerReport() {
	fmt.Printf("TimerReport: %v, NThreads: %v\n", hr.Nm, hr.NThreads)
	fmt.Printf("\tFunction Name\tTotal Secs\tPct\n")
	fnms := make([]string, 0, len(hr.FunTimes))
	for k := range hr.FunTimes {
		fnms = append(fnms, k)
	}
	sort.Strings(fnms)
	pcts := make([]float64, len(fnms))
	tot := 0.0
	for i, fn := range fnms {
		pcts[i] = hr.FunTimes[fn].TotalSecs()
		tot += pcts[i]
	}
	for i, fn := range fnms {
		fmt.Printf("\t%v \t%6.4g\t%6.4g\n", fn, pcts[i], 100*(pcts[i]/tot))
	}
	fmt.Printf("\tTotal   \t%6.4g\n", tot)
}

// FunTimerReset resets all the function timers
func (hr *Hierarchy) FunTimerReset() {
	for _, ft := range hr.FunTimes {
		ft.Reset()
	}
}

// FunTimerStart starts function timer for given function name -- ensures creation of timer
func (hr *Hierarchy) FunTimerStart(fun string) {
	if hr.FunTimes == nil {
		hr.FunTimes = make(map[string]*timer.Time)
	}
	ft, ok := hr.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		hr.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops function timer -- timer must already exist
func (hr *Hierarchy) FunTimerStop(fun string) {
	ft := hr.FunTimes[fun]
	ft.Stop()
}
