package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// program description loading
	LoadInfo          Code = 1000
	LoadBadDocument   Code = 1001
	LoadUnknownName   Code = 1002
	LoadDuplicateName Code = 1003
	LoadBadNode       Code = 1004
	LoadBadValue      Code = 1005

	// type checking
	TypeInfo                    Code = 3000
	TypeError                   Code = 3001
	TypeProtocolNotInferable    Code = 3002
	TypeProtocolVarNotMentioned Code = 3003
	TypeArgumentNotInherit      Code = 3004
	TypeConstexprMismatch       Code = 3005
	TypeArgumentCount           Code = 3006
	TypeIllegalPointer          Code = 3007
	TypeArrayLengthNotConstexpr Code = 3008
	TypeArrayLengthNotUint      Code = 3009
	TypeInitMismatch            Code = 3010
	TypeNotLValue               Code = 3011
	TypeAssignMismatch          Code = 3012
	TypeDerefNonPointer         Code = 3013
	TypeArrayRefOfArrayRef      Code = 3014
	TypeNotStruct               Code = 3015
	TypeUnknownField            Code = 3016
	TypeConditionNotBool        Code = 3017
	TypeReturnMismatch          Code = 3018
	TypeMissingReturnValue      Code = 3019
	TypeNoMatchingOverload      Code = 3020
	TypePointerSubscript        Code = 3021
	TypeEnumBase                Code = 3022
	TypeEnumMember              Code = 3023
	TypeNestingTooDeep          Code = 3024

	// entry point semantics
	SemInfo       Code = 4000
	SemMissing    Code = 4001
	SemWrongType  Code = 4002
	SemWrongStage Code = 4003
	SemDuplicate  Code = 4004

	IOLoadFileError Code = 5001

	ObsInfo    Code = 6000
	ObsTimings Code = 6001

	// compiler defects
	InternalInfo             Code = 9000
	InternalError            Code = 9001
	InternalResolverMismatch Code = 9002
	InternalUnknownSemantic  Code = 9003
	InternalUnresolvedType   Code = 9004
	InternalMissingType      Code = 9005
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LoadInfo:                    "Program description information",
		LoadBadDocument:             "Malformed program description",
		LoadUnknownName:             "Unknown name in program description",
		LoadDuplicateName:           "Duplicate declaration in program description",
		LoadBadNode:                 "Node has no or several kinds",
		LoadBadValue:                "Invalid literal value",
		TypeInfo:                    "Type checking information",
		TypeError:                   "Type error",
		TypeProtocolNotInferable:    "protocol signature type parameter not inferable from value parameters",
		TypeProtocolVarNotMentioned: "protocol type variable not mentioned in signature",
		TypeArgumentNotInherit:      "type argument does not inherit protocol",
		TypeConstexprMismatch:       "wrong type for constexpr",
		TypeArgumentCount:           "wrong number of type arguments",
		TypeIllegalPointer:          "illegal pointer to non-primitive type",
		TypeArrayLengthNotConstexpr: "array length must be constexpr",
		TypeArrayLengthNotUint:      "array length must be a uint32",
		TypeInitMismatch:            "type mismatch in variable initialization",
		TypeNotLValue:               "operand is not an lvalue",
		TypeAssignMismatch:          "type mismatch in assignment",
		TypeDerefNonPointer:         "dereference of a non-pointer",
		TypeArrayRefOfArrayRef:      "array reference to an array reference",
		TypeNotStruct:               "operand to dot expression is not a struct",
		TypeUnknownField:            "unknown field",
		TypeConditionNotBool:        "expression is not a bool",
		TypeReturnMismatch:          "type mismatch in return",
		TypeMissingReturnValue:      "non-void function must return a value",
		TypeNoMatchingOverload:      "no matching function for call",
		TypePointerSubscript:        "pointer subscript is not valid",
		TypeEnumBase:                "enum base type must be an integer",
		TypeEnumMember:              "invalid enum member",
		TypeNestingTooDeep:          "expression nesting too deep",
		SemInfo:                     "Entry point information",
		SemMissing:                  "entry point value has no semantic",
		SemWrongType:                "semantic does not accept this type",
		SemWrongStage:               "semantic not valid for this stage and direction",
		SemDuplicate:                "duplicate semantic",
		IOLoadFileError:             "I/O load file error",
		ObsInfo:                     "Observability information",
		ObsTimings:                  "Pipeline timings",
		InternalInfo:                "Compiler information",
		InternalError:               "internal compiler error",
		InternalResolverMismatch:    "argument and parameter types differ after substitution",
		InternalUnknownSemantic:     "unknown built-in semantic",
		InternalUnresolvedType:      "type reference without a resolved type",
		InternalMissingType:         "expression has no type",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LDR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("ICE%04d", ic)
	}
	return "E0000"
}

// IsInternal reports whether the code describes a compiler defect rather than
// a problem in the checked program.
func (c Code) IsInternal() bool {
	return c >= InternalInfo && c < 10000
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
