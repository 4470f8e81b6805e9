package diag

import "github.com/tangzhangming/vbc/internal/i18n"

// 错误码（沿用 BCnnnnn 编号）
const (
	// 词法和预处理
	ErrEndIfExpected      = 30012
	ErrDirectiveNoIf      = 30013
	ErrElseIfNoIf         = 30014
	ErrElseNoIf           = 30028
	ErrElseIfAfterElse    = 32030
	ErrBadDirective       = 30248
	ErrBadDirectiveExpr   = 30249
	ErrIllegalChar        = 30037
	ErrUnterminatedString = 30648
	ErrBadCharLiteral     = 30004
	ErrBadDateLiteral     = 31085
	ErrLiteralOverflow    = 30036
	ErrBadNumber          = 30038

	// 语法
	ErrSyntax          = 30035
	ErrUnrecoverable   = 30026
	ErrDuplicateLocal  = 30288
	ErrDuplicateParam  = 30237
	ErrMismatchedEnd   = 30678
	ErrNextMismatch    = 30070
	ErrInvalidOption   = 30206
	ErrExitOutsideLoop = 30089
	ErrDuplicateType   = 30179
	ErrModifierInvalid = 30242

	// 绑定与转换
	ErrNameNotDeclared     = 30451
	ErrTypeNotDefined      = 30002
	ErrTypeArgCount        = 32042
	ErrArgCount            = 30057
	ErrCannotConvert       = 30311
	ErrNotRepresentable    = 30439
	ErrStrictNarrowing     = 30512
	ErrDelegateSignature   = 31143
	ErrInheritsNonClass    = 30258
	ErrImplementsNonIface  = 30232
	ErrInheritanceCycle    = 30257
	ErrOperatorSignature   = 33021
	ErrConstantRequired    = 30059
	ErrNoAccessibleMethod  = 30518
	ErrDivisionByZero      = 30542
	ErrConstantOverflow    = 30040
	ErrOperatorNotDefined  = 30452
	ErrUnaryNotDefined     = 30487
	ErrNotAVariable        = 30068
	ErrAbstractInstantiate = 30569
	ErrEnumUnderlying      = 30650
	ErrNotMember           = 30456
	ErrNotInvocable        = 30454
	ErrCircularConstant    = 30500
	ErrReturnInSub         = 30647
	ErrAddressOfOperand    = 30577
	ErrMustImplement       = 30149
	ErrMustOverride        = 30610
	ErrTypeAsExpr          = 30108

	// 泛型约束
	ErrRefConstraint        = 32106
	ErrValueConstraint      = 32105
	ErrClassConstraint      = 32044
	ErrInterfaceConstraint  = 32048
	ErrNewConstraint        = 32083
	ErrNewAbstract          = 32084
	ErrConflictConstraints  = 32119
	ErrDuplicateConstraint  = 32102
	ErrMultipleClassConstr  = 32047
	ErrBadConstraintType    = 32061
	ErrCircularConstraint   = 32113
	ErrCannotInfer          = 32050
	ErrInferConflict        = 36647
	ErrDuplicateTypeParam   = 32049
	ErrTypeParamShadowsType = 32054
)

// messageKeys 错误码到 i18n 消息键的映射
var messageKeys = map[int]string{
	ErrEndIfExpected:      i18n.ErrEndIfExpected,
	ErrDirectiveNoIf:      i18n.ErrDirectiveNoIf,
	ErrElseIfNoIf:         i18n.ErrElseIfNoIf,
	ErrElseNoIf:           i18n.ErrElseNoIf,
	ErrElseIfAfterElse:    i18n.ErrElseIfAfterElse,
	ErrBadDirective:       i18n.ErrBadDirective,
	ErrBadDirectiveExpr:   i18n.ErrBadDirectiveExpr,
	ErrIllegalChar:        i18n.ErrIllegalChar,
	ErrUnterminatedString: i18n.ErrUnterminatedString,
	ErrBadCharLiteral:     i18n.ErrBadCharLiteral,
	ErrBadDateLiteral:     i18n.ErrBadDateLiteral,
	ErrLiteralOverflow:    i18n.ErrLiteralOverflow,
	ErrBadNumber:          i18n.ErrBadNumber,

	ErrSyntax:          i18n.ErrSyntax,
	ErrUnrecoverable:   i18n.ErrUnrecoverable,
	ErrDuplicateLocal:  i18n.ErrDuplicateLocal,
	ErrDuplicateParam:  i18n.ErrDuplicateParam,
	ErrMismatchedEnd:   i18n.ErrMismatchedEnd,
	ErrNextMismatch:    i18n.ErrNextMismatch,
	ErrInvalidOption:   i18n.ErrInvalidOption,
	ErrExitOutsideLoop: i18n.ErrExitOutsideLoop,
	ErrDuplicateType:   i18n.ErrDuplicateType,
	ErrModifierInvalid: i18n.ErrModifierInvalid,

	ErrNameNotDeclared:     i18n.ErrNameNotDeclared,
	ErrTypeNotDefined:      i18n.ErrTypeNotDefined,
	ErrTypeArgCount:        i18n.ErrTypeArgCount,
	ErrArgCount:            i18n.ErrArgCount,
	ErrCannotConvert:       i18n.ErrCannotConvert,
	ErrNotRepresentable:    i18n.ErrNotRepresentable,
	ErrStrictNarrowing:     i18n.ErrStrictNarrowing,
	ErrDelegateSignature:   i18n.ErrDelegateSignature,
	ErrInheritsNonClass:    i18n.ErrInheritsNonClass,
	ErrImplementsNonIface:  i18n.ErrImplementsNonIface,
	ErrInheritanceCycle:    i18n.ErrInheritanceCycle,
	ErrOperatorSignature:   i18n.ErrOperatorSignature,
	ErrConstantRequired:    i18n.ErrConstantRequired,
	ErrNoAccessibleMethod:  i18n.ErrNoAccessibleMethod,
	ErrDivisionByZero:      i18n.ErrDivisionByZero,
	ErrConstantOverflow:    i18n.ErrConstantOverflow,
	ErrOperatorNotDefined:  i18n.ErrOperatorNotDefined,
	ErrUnaryNotDefined:     i18n.ErrUnaryNotDefined,
	ErrNotAVariable:        i18n.ErrNotAVariable,
	ErrAbstractInstantiate: i18n.ErrAbstractInstantiate,
	ErrEnumUnderlying:      i18n.ErrEnumUnderlying,
	ErrNotMember:           i18n.ErrNotMember,
	ErrNotInvocable:        i18n.ErrNotInvocable,
	ErrCircularConstant:    i18n.ErrCircularConstant,
	ErrReturnInSub:         i18n.ErrReturnInSub,
	ErrAddressOfOperand:    i18n.ErrAddressOfOperand,
	ErrMustImplement:       i18n.ErrMustImplement,
	ErrMustOverride:        i18n.ErrMustOverride,
	ErrTypeAsExpr:          i18n.ErrTypeAsExpr,

	ErrRefConstraint:        i18n.ErrRefConstraint,
	ErrValueConstraint:      i18n.ErrValueConstraint,
	ErrClassConstraint:      i18n.ErrClassConstraint,
	ErrInterfaceConstraint:  i18n.ErrInterfaceConstraint,
	ErrNewConstraint:        i18n.ErrNewConstraint,
	ErrNewAbstract:          i18n.ErrNewAbstract,
	ErrConflictConstraints:  i18n.ErrConflictConstraints,
	ErrDuplicateConstraint:  i18n.ErrDuplicateConstraint,
	ErrMultipleClassConstr:  i18n.ErrMultipleClassConstr,
	ErrBadConstraintType:    i18n.ErrBadConstraintType,
	ErrCircularConstraint:   i18n.ErrCircularConstraint,
	ErrCannotInfer:          i18n.ErrCannotInfer,
	ErrInferConflict:        i18n.ErrInferConflict,
	ErrDuplicateTypeParam:   i18n.ErrDuplicateTypeParam,
	ErrTypeParamShadowsType: i18n.ErrTypeParamShadowsType,
}

// Message 返回错误码对应的本地化消息
func Message(code int, args ...any) string {
	key, ok := messageKeys[code]
	if !ok {
		return i18n.T("diag.unknown")
	}
	return i18n.T(key, args...)
}
