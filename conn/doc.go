// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package conn provides the connection store shared by all csrl populations:
weighted edges with an eligibility trace addressed by integer index, the
trace and weight-change rules applied to them, random initialization,
and the spatial neighborhood geometry used to wire grid-shaped populations.
*/
package conn
