package i18n

// zhMessages contains Chinese translations
var zhMessages = map[string]string{
	// Lexer and preprocessor
	ErrIllegalChar:        "字符 '%s' 无效",
	ErrUnterminatedString: "字符串常量必须以双引号结束",
	ErrBadCharLiteral:     "字符常量必须只包含一个字符",
	ErrBadDateLiteral:     "日期常量 '%s' 无效",
	ErrLiteralOverflow:    "数值字面量 '%s' 溢出",
	ErrBadNumber:          "数值字面量 '%s' 无效",
	ErrEndIfExpected:      "'#If' 块必须以匹配的 '#End If' 结束",
	ErrDirectiveNoIf:      "'#ElseIf'、'#Else' 或 '#End If' 之前必须有匹配的 '#If'",
	ErrElseIfNoIf:         "'#ElseIf' 之前必须有匹配的 '#If' 或 '#ElseIf'",
	ErrElseNoIf:           "'#Else' 之前必须有匹配的 '#If' 或 '#ElseIf'",
	ErrElseIfAfterElse:    "在 '#If' 块中 '#ElseIf' 不能出现在 '#Else' 之后",
	ErrBadDirective:       "期望 'If'、'ElseIf'、'Else'、'End If' 或 'Const', 实际是 '%s'",
	ErrBadDirectiveExpr:   "条件编译表达式无效: %s",

	// Parser
	ErrSyntax:          "语法错误: 意外的 %s, 期望 %s",
	ErrUnrecoverable:   "从语法错误恢复时遇到文件结尾",
	ErrDuplicateLocal:  "局部变量 '%s' 已在当前块中声明",
	ErrDuplicateParam:  "参数 '%s' 已声明",
	ErrMismatchedEnd:   "期望 '%s', 实际是 '%s'",
	ErrNextMismatch:    "'Next' 控制变量 '%s' 与 'For' 循环控制变量 '%s' 不匹配",
	ErrInvalidOption:   "'Option %s' 无效",
	ErrExitOutsideLoop: "'Exit %s' 只能出现在匹配的块中",
	ErrDuplicateType:   "类型 '%s' 已在 '%s' 中声明",
	ErrModifierInvalid: "修饰符 '%s' 不能用于 %s 声明",

	// Binding and conversions
	ErrNameNotDeclared:     "'%s' 未声明",
	ErrTypeNotDefined:      "类型 '%s' 未定义",
	ErrTypeArgCount:        "类型 '%s' 需要 %d 个类型参数, 实际 %d 个",
	ErrArgCount:            "'%s' 需要 %d 个参数, 实际 %d 个",
	ErrCannotConvert:       "类型 '%s' 的值无法转换为 '%s'",
	ErrNotRepresentable:    "常量表达式无法用类型 '%s' 表示",
	ErrStrictNarrowing:     "Option Strict On 不允许从 '%s' 到 '%s' 的隐式转换",
	ErrDelegateSignature:   "方法 '%s' 的签名与委托 '%s' 不兼容",
	ErrInheritsNonClass:    "类 '%s' 只能继承其他类, '%s' 不是类",
	ErrImplementsNonIface:  "'%s' 不能实现 '%s', 因为它不是接口",
	ErrInheritanceCycle:    "类型 '%s' 不能继承自身",
	ErrOperatorSignature:   "'%s' 中的转换运算符必须从包含类型转换或转换到包含类型",
	ErrConstantRequired:    "常量 '%s' 需要常量初始值",
	ErrNoAccessibleMethod:  "'%s' 没有接受这些参数的可访问方法",
	ErrDivisionByZero:      "计算此表达式时发生除以零",
	ErrConstantOverflow:    "常量表达式溢出类型 '%s'",
	ErrOperatorNotDefined:  "没有为类型 '%[2]s' 和 '%[3]s' 定义运算符 '%[1]s'",
	ErrUnaryNotDefined:     "没有为类型 '%[2]s' 定义运算符 '%[1]s'",
	ErrNotAVariable:        "表达式 '%s' 是值, 不能作为赋值目标",
	ErrAbstractInstantiate: "类 '%s' 声明为 'MustInherit', 不能使用 'New'",
	ErrEnumUnderlying:      "枚举的基础类型必须是整型, '%s' 无效",
	ErrNotMember:           "'%s' 不是 '%s' 的成员",
	ErrNotInvocable:        "表达式 '%s' 不是方法",
	ErrCircularConstant:    "常量 '%s' 不能依赖自身的值",
	ErrReturnInSub:         "Sub 中的 'Return' 语句不能返回值",
	ErrAddressOfOperand:    "'AddressOf' 的操作数必须是方法名",
	ErrMustImplement:       "'%[1]s' 必须为接口 '%[3]s' 实现 '%[2]s'",
	ErrMustOverride:        "类 '%s' 必须声明为 'MustInherit' 或重写继承的 'MustOverride' 成员 '%s'",
	ErrTypeAsExpr:          "'%s' 是类型, 不能用作表达式",

	// Generics
	ErrRefConstraint:        "类型参数 '%[2]s' 的类型实参 '%[1]s' 不满足 'Class' 约束",
	ErrValueConstraint:      "类型参数 '%[2]s' 的类型实参 '%[1]s' 不满足 'Structure' 约束",
	ErrClassConstraint:      "类型实参 '%[1]s' 未继承类型参数 '%[3]s' 的约束类型 '%[2]s'",
	ErrInterfaceConstraint:  "类型实参 '%[1]s' 未实现类型参数 '%[3]s' 的约束接口 '%[2]s'",
	ErrNewConstraint:        "类型实参 '%[1]s' 必须有公共无参实例构造函数才能满足类型参数 '%[2]s' 的 'New' 约束",
	ErrNewAbstract:          "类型实参 '%[1]s' 声明为 'MustInherit', 不满足类型参数 '%[2]s' 的 'New' 约束",
	ErrConflictConstraints:  "约束 '%[1]s' 与类型参数 '%[3]s' 已指定的约束 '%[2]s' 冲突",
	ErrDuplicateConstraint:  "类型参数 '%[2]s' 已指定约束 '%[1]s'",
	ErrMultipleClassConstr:  "类型参数 '%s' 只能有一个类约束",
	ErrBadConstraintType:    "'%s' 不能用作类型约束",
	ErrCircularConstraint:   "类型参数 '%s' 不能通过 '%s' 约束到自身",
	ErrCannotInfer:          "无法推断 '%[2]s' 的类型参数 '%[1]s'",
	ErrInferConflict:        "无法推断 '%[2]s' 的类型参数 '%[1]s': '%[3]s' 和 '%[4]s' 都有可能",
	ErrDuplicateTypeParam:   "类型参数 '%s' 已声明",
	ErrTypeParamShadowsType: "类型参数 '%s' 与其包含类型同名",

	// CLI - Usage and help
	MsgUsage:          "用法: vbc <命令> [参数]",
	MsgCommands:       "命令:",
	MsgCmdCheck:       "  check    解析并检查源文件, 输出诊断信息",
	MsgCmdTokens:      "  tokens   打印语法分析器看到的 token 流",
	MsgCmdGrammar:     "  grammar  打印 LALR 表统计和冲突",
	MsgCmdVersion:     "  version  打印版本信息",
	MsgCmdHelp:        "  help     打印帮助信息",
	MsgUseHelp:        "使用 \"vbc <命令> -h\" 查看命令的详细信息。",
	MsgUnknownCommand: "未知命令: %s",

	// CLI - Check command
	MsgCheckUsage:       "用法: vbc check [选项] <输入>...",
	MsgCheckDescription: "解析并检查源文件。每个输入目录作为独立项目编译。",
	MsgCheckArgInput:    "  <输入>    输入文件或目录",
	MsgCheckOptVerbose:  "详细输出",
	MsgCheckOptStrict:   "启用 Option Strict (覆盖 vbc.toml)",
	MsgCheckOptDefine:   "条件编译常量, 例如 DEBUG=True,TRACE",
	MsgCheckOptJobs:     "并发检查的项目数",
	MsgCheckCompleted:   "已检查 %d 个文件, 没有错误",
	MsgCheckFailed:      "编译失败: %d 个错误, %d 个警告",
	MsgCheckWarnings:    "编译成功, 有 %d 个警告",

	// CLI - Tokens command
	MsgTokensUsage:       "用法: vbc tokens [选项] <文件>",
	MsgTokensDescription: "打印经过条件编译后剩余的 token。",

	// CLI - Grammar command
	MsgGrammarUsage:       "用法: vbc grammar",
	MsgGrammarDescription: "构建 LALR(1) 表并打印统计信息。",
	MsgGrammarStats:       "%d 条产生式, %d 个状态, %d 个终结符, %d 个非终结符",
	MsgGrammarConflicts:   "%d 个冲突已按默认规则解决",

	// CLI - Common errors
	ErrInputRequired:     "错误: 需要指定输入文件或目录",
	ErrCannotAccessInput: "无法访问输入",
	ErrCannotLoadConfig:  "无法加载配置",
	ErrCannotReadFile:    "无法读取文件",
	ErrNoSourceFiles:     "在 %s 中没有找到 .vb 文件",
	ErrBadDefine:         "无效的定义 '%s'",

	// CLI - Info messages
	MsgUsingConfig: "使用配置: %s (项目: %s)",
	MsgNoConfig:    "未找到 vbc.toml, 使用默认项目: %s",
	MsgParsing:     "解析: %s",
	MsgCompiling:   "编译 %d 个项目",
}
