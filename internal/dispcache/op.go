package dispcache

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOp is returned by ParseOp for names outside the resolver surface.
var ErrUnknownOp = errors.New("unknown resolve op")

// Op identifies a resolver entry point.
type Op uint8

const (
	OpInvalid Op = iota
	OpVirtual
	OpInterface
	OpVariantInterface
	OpDefault
	OpVariantDefault
	OpStatic
	OpVariantStatic
	OpCall
)

var opNames = [...]string{
	OpInvalid:          "invalid",
	OpVirtual:          "virtual",
	OpInterface:        "interface",
	OpVariantInterface: "variant-interface",
	OpDefault:          "default",
	OpVariantDefault:   "variant-default",
	OpStatic:           "static",
	OpVariantStatic:    "variant-static",
	OpCall:             "call",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// Ops lists the valid ops in declaration order.
func Ops() []Op {
	out := make([]Op, 0, len(opNames)-1)
	for o := OpVirtual; int(o) < len(opNames); o++ {
		out = append(out, o)
	}
	return out
}

// ParseOp maps an op name (case-insensitive) to its Op.
func ParseOp(s string) (Op, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, o := range Ops() {
		if opNames[o] == name {
			return o, nil
		}
	}
	return OpInvalid, fmt.Errorf("%w %q (want one of %s)", ErrUnknownOp, s, strings.Join(opNameList(), ", "))
}

func opNameList() []string {
	ops := Ops()
	out := make([]string, len(ops))
	for i, o := range ops {
		out[i] = o.String()
	}
	return out
}
