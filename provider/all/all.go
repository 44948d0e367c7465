// Package all registers every bundled provider. Import it for side
// effects:
//
//	import _ "github.com/kbukum/scoutkit/provider/all"
package all

import (
	_ "github.com/kbukum/scoutkit/provider/chatglm"
	_ "github.com/kbukum/scoutkit/provider/gmi"
	_ "github.com/kbukum/scoutkit/provider/jadve"
	_ "github.com/kbukum/scoutkit/provider/k2think"
	_ "github.com/kbukum/scoutkit/provider/scira"
	_ "github.com/kbukum/scoutkit/provider/together"
	_ "github.com/kbukum/scoutkit/provider/turboseek"
	_ "github.com/kbukum/scoutkit/provider/twoai"
)
