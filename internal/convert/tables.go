package convert

import (
	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/constant"
)

// implicitOps 隐式数值转换，每一对都单独列出
var implicitOps = map[constant.Kind]map[constant.Kind]ast.NumOp{
	constant.SByte: {
		constant.Short:   ast.OpConvI2,
		constant.Integer: ast.OpConvI4,
		constant.Long:    ast.OpConvI8,
		constant.Single:  ast.OpConvR4,
		constant.Double:  ast.OpConvR8,
		constant.Decimal: ast.OpConvDec,
	},
	constant.Byte: {
		constant.Short:    ast.OpConvI2,
		constant.UShort:   ast.OpConvU2,
		constant.Integer:  ast.OpConvI4,
		constant.UInteger: ast.OpConvU4,
		constant.Long:     ast.OpConvU8,
		constant.ULong:    ast.OpConvU8,
		constant.Single:   ast.OpConvRUn,
		constant.Double:   ast.OpConvRUn,
		constant.Decimal:  ast.OpConvDec,
	},
	constant.Short: {
		constant.Integer: ast.OpConvI4,
		constant.Long:    ast.OpConvI8,
		constant.Single:  ast.OpConvR4,
		constant.Double:  ast.OpConvR8,
		constant.Decimal: ast.OpConvDec,
	},
	constant.UShort: {
		constant.Integer:  ast.OpConvI4,
		constant.UInteger: ast.OpConvU4,
		constant.Long:     ast.OpConvU8,
		constant.ULong:    ast.OpConvU8,
		constant.Single:   ast.OpConvRUn,
		constant.Double:   ast.OpConvRUn,
		constant.Decimal:  ast.OpConvDec,
	},
	constant.Integer: {
		constant.Long:    ast.OpConvI8,
		constant.Single:  ast.OpConvR4,
		constant.Double:  ast.OpConvR8,
		constant.Decimal: ast.OpConvDec,
	},
	constant.UInteger: {
		constant.Long:    ast.OpConvU8,
		constant.ULong:   ast.OpConvU8,
		constant.Single:  ast.OpConvRUn,
		constant.Double:  ast.OpConvRUn,
		constant.Decimal: ast.OpConvDec,
	},
	constant.Long: {
		constant.Single:  ast.OpConvR4,
		constant.Double:  ast.OpConvR8,
		constant.Decimal: ast.OpConvDec,
	},
	constant.ULong: {
		constant.Single:  ast.OpConvRUn,
		constant.Double:  ast.OpConvRUn,
		constant.Decimal: ast.OpConvDec,
	},
	constant.Char: {
		constant.UShort:   ast.OpConvU2,
		constant.Integer:  ast.OpConvI4,
		constant.UInteger: ast.OpConvU4,
		constant.Long:     ast.OpConvU8,
		constant.ULong:    ast.OpConvU8,
		constant.Single:   ast.OpConvRUn,
		constant.Double:   ast.OpConvRUn,
		constant.Decimal:  ast.OpConvDec,
	},
	constant.Single: {
		constant.Double: ast.OpConvR8,
	},
}

// explicitOps 显式（收窄）数值转换，每一对映射到具体的截断指令
var explicitOps = map[constant.Kind]map[constant.Kind]ast.NumOp{
	constant.SByte: {
		constant.Byte:     ast.OpConvU1,
		constant.UShort:   ast.OpConvU2,
		constant.UInteger: ast.OpConvU4,
		constant.ULong:    ast.OpConvU8,
		constant.Char:     ast.OpConvCh,
	},
	constant.Byte: {
		constant.SByte: ast.OpConvI1,
		constant.Char:  ast.OpConvCh,
	},
	constant.Short: {
		constant.SByte:    ast.OpConvI1,
		constant.Byte:     ast.OpConvU1,
		constant.UShort:   ast.OpConvU2,
		constant.UInteger: ast.OpConvU4,
		constant.ULong:    ast.OpConvU8,
		constant.Char:     ast.OpConvCh,
	},
	constant.UShort: {
		constant.SByte: ast.OpConvI1,
		constant.Byte:  ast.OpConvU1,
		constant.Short: ast.OpConvI2,
		constant.Char:  ast.OpConvCh,
	},
	constant.Integer: {
		constant.SByte:    ast.OpConvI1,
		constant.Byte:     ast.OpConvU1,
		constant.Short:    ast.OpConvI2,
		constant.UShort:   ast.OpConvU2,
		constant.UInteger: ast.OpConvU4,
		constant.ULong:    ast.OpConvU8,
		constant.Char:     ast.OpConvCh,
	},
	constant.UInteger: {
		constant.SByte:   ast.OpConvI1,
		constant.Byte:    ast.OpConvU1,
		constant.Short:   ast.OpConvI2,
		constant.UShort:  ast.OpConvU2,
		constant.Integer: ast.OpConvI4,
		constant.Char:    ast.OpConvCh,
	},
	constant.Long: {
		constant.SByte:    ast.OpConvI1,
		constant.Byte:     ast.OpConvU1,
		constant.Short:    ast.OpConvI2,
		constant.UShort:   ast.OpConvU2,
		constant.Integer:  ast.OpConvI4,
		constant.UInteger: ast.OpConvU4,
		constant.ULong:    ast.OpConvU8,
		constant.Char:     ast.OpConvCh,
	},
	constant.ULong: {
		constant.SByte:    ast.OpConvI1,
		constant.Byte:     ast.OpConvU1,
		constant.Short:    ast.OpConvI2,
		constant.UShort:   ast.OpConvU2,
		constant.Integer:  ast.OpConvI4,
		constant.UInteger: ast.OpConvU4,
		constant.Long:     ast.OpConvI8,
		constant.Char:     ast.OpConvCh,
	},
	constant.Char: {
		constant.SByte: ast.OpConvI1,
		constant.Byte:  ast.OpConvU1,
		constant.Short: ast.OpConvI2,
	},
	constant.Single: {
		constant.SByte:    ast.OpConvI1,
		constant.Byte:     ast.OpConvU1,
		constant.Short:    ast.OpConvI2,
		constant.UShort:   ast.OpConvU2,
		constant.Integer:  ast.OpConvI4,
		constant.UInteger: ast.OpConvU4,
		constant.Long:     ast.OpConvI8,
		constant.ULong:    ast.OpConvU8,
		constant.Char:     ast.OpConvCh,
		constant.Decimal:  ast.OpConvDec,
	},
	constant.Double: {
		constant.SByte:    ast.OpConvI1,
		constant.Byte:     ast.OpConvU1,
		constant.Short:    ast.OpConvI2,
		constant.UShort:   ast.OpConvU2,
		constant.Integer:  ast.OpConvI4,
		constant.UInteger: ast.OpConvU4,
		constant.Long:     ast.OpConvI8,
		constant.ULong:    ast.OpConvU8,
		constant.Char:     ast.OpConvCh,
		constant.Single:   ast.OpConvR4,
		constant.Decimal:  ast.OpConvDec,
	},
	constant.Decimal: {
		constant.SByte:    ast.OpFromDec,
		constant.Byte:     ast.OpFromDec,
		constant.Short:    ast.OpFromDec,
		constant.UShort:   ast.OpFromDec,
		constant.Integer:  ast.OpFromDec,
		constant.UInteger: ast.OpFromDec,
		constant.Long:     ast.OpFromDec,
		constant.ULong:    ast.OpFromDec,
		constant.Char:     ast.OpFromDec,
		constant.Single:   ast.OpFromDec,
		constant.Double:   ast.OpFromDec,
	},
}

func implicitOp(from, to constant.Kind) (ast.NumOp, bool) {
	op, ok := implicitOps[from][to]
	return op, ok
}

func explicitOp(from, to constant.Kind) (ast.NumOp, bool) {
	op, ok := explicitOps[from][to]
	return op, ok
}

// numericOp 任意方向的数值转换指令
func numericOp(from, to constant.Kind) (ast.NumOp, bool) {
	if op, ok := implicitOp(from, to); ok {
		return op, true
	}
	return explicitOp(from, to)
}
