package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Manifest structure
	ManInfo              Code = 1000
	ManDecodeFailed      Code = 1001
	ManUnknownFormat     Code = 1002
	ManDuplicateType     Code = 1003
	ManBadKind           Code = 1004
	ManBadGenericParam   Code = 1005
	ManBaseNotClass      Code = 1006
	ManInterfaceWithBase Code = 1007
	ManCyclicHierarchy   Code = 1008
	ManNotInterface      Code = 1009
	ManUnknownFlag       Code = 1010
	ManBadMethod         Code = 1011
	ManOverrideBody      Code = 1012
	ManBadOverride       Code = 1013
	ManUnknownKey        Code = 1014

	// Type and method references
	RefInfo            Code = 2000
	RefSyntax          Code = 2001
	RefUnknownType     Code = 2002
	RefArity           Code = 2003
	RefUnknownMethod   Code = 2004
	RefAmbiguousMethod Code = 2005
	RefMethodArity     Code = 2006

	// Queries
	QryInfo          Code = 3000
	QryUnknownOp     Code = 3001
	QryBadExpect     Code = 3002
	QryDuplicateName Code = 3003
	QryMismatch      Code = 3004
	QryMalformedType Code = 3005
	QryMissingField  Code = 3006

	// Project configuration
	PrjInfo          Code = 5000
	PrjConfigInvalid Code = 5001
	PrjUnknownKey    Code = 5002

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:          "Unknown error",
		ManInfo:              "Manifest information",
		ManDecodeFailed:      "manifest cannot be decoded",
		ManUnknownFormat:     "unknown manifest format",
		ManDuplicateType:     "duplicate type definition",
		ManBadKind:           "unknown type kind",
		ManBadGenericParam:   "malformed generic parameter",
		ManBaseNotClass:      "base type must be a class",
		ManInterfaceWithBase: "interface cannot have a base class",
		ManCyclicHierarchy:   "cyclic type hierarchy",
		ManNotInterface:      "implemented type is not an interface",
		ManUnknownFlag:       "unknown method flag",
		ManBadMethod:         "malformed method declaration",
		ManOverrideBody:      "override body is not declared on its type",
		ManBadOverride:       "malformed override record",
		ManUnknownKey:        "unknown manifest key",
		RefInfo:              "Reference information",
		RefSyntax:            "malformed reference",
		RefUnknownType:       "unknown type",
		RefArity:             "generic arity mismatch",
		RefUnknownMethod:     "unknown method",
		RefAmbiguousMethod:   "ambiguous method reference",
		RefMethodArity:       "method generic arity mismatch",
		QryInfo:              "Query information",
		QryUnknownOp:         "unknown query op",
		QryBadExpect:         "malformed expectation",
		QryDuplicateName:     "duplicate query name",
		QryMismatch:          "resolution differs from expectation",
		QryMalformedType:     "malformed type hierarchy",
		QryMissingField:      "query field is missing",
		PrjInfo:              "Project information",
		PrjConfigInvalid:     "invalid project configuration",
		PrjUnknownKey:        "unknown configuration key",
		ObsInfo:              "Observability information",
		ObsTimings:           "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("MAN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("REF%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("QRY%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
