package i18n

// enMessages contains English translations
var enMessages = map[string]string{
	// Lexer and preprocessor
	ErrIllegalChar:        "character '%s' is not valid",
	ErrUnterminatedString: "string constants must end with a double quote",
	ErrBadCharLiteral:     "character constant must contain exactly one character",
	ErrBadDateLiteral:     "date constant '%s' is not valid",
	ErrLiteralOverflow:    "overflow in numeric literal '%s'",
	ErrBadNumber:          "numeric literal '%s' is not valid",
	ErrEndIfExpected:      "'#If' block must end with a matching '#End If'",
	ErrDirectiveNoIf:      "'#ElseIf', '#Else', or '#End If' must be preceded by a matching '#If'",
	ErrElseIfNoIf:         "'#ElseIf' must be preceded by a matching '#If' or '#ElseIf'",
	ErrElseNoIf:           "'#Else' must be preceded by a matching '#If' or '#ElseIf'",
	ErrElseIfAfterElse:    "'#ElseIf' cannot follow '#Else' as part of a '#If' block",
	ErrBadDirective:       "'If', 'ElseIf', 'Else', 'End If', or 'Const' expected, got '%s'",
	ErrBadDirectiveExpr:   "conditional compilation expression is not valid: %s",

	// Parser
	ErrSyntax:          "syntax error: unexpected %s, expecting %s",
	ErrUnrecoverable:   "unexpected end of file while recovering from syntax errors",
	ErrDuplicateLocal:  "local variable '%s' is already declared in the current block",
	ErrDuplicateParam:  "parameter '%s' is already declared",
	ErrMismatchedEnd:   "'%s' expected, found '%s'",
	ErrNextMismatch:    "'Next' control variable '%s' does not match 'For' loop control variable '%s'",
	ErrInvalidOption:   "'Option %s' is not valid",
	ErrExitOutsideLoop: "'Exit %s' can only appear inside a matching block",
	ErrDuplicateType:   "type '%s' is already declared in '%s'",
	ErrModifierInvalid: "modifier '%s' is not valid on %s declarations",

	// Binding and conversions
	ErrNameNotDeclared:     "'%s' is not declared",
	ErrTypeNotDefined:      "type '%s' is not defined",
	ErrTypeArgCount:        "type '%s' expects %d type argument(s), got %d",
	ErrArgCount:            "'%s' expects %d argument(s), got %d",
	ErrCannotConvert:       "value of type '%s' cannot be converted to '%s'",
	ErrNotRepresentable:    "constant expression not representable in type '%s'",
	ErrStrictNarrowing:     "Option Strict On disallows implicit conversions from '%s' to '%s'",
	ErrDelegateSignature:   "method '%s' does not have a signature compatible with delegate '%s'",
	ErrInheritsNonClass:    "class '%s' can inherit only from another class, '%s' is not a class",
	ErrImplementsNonIface:  "'%s' cannot implement '%s' because it is not an interface",
	ErrInheritanceCycle:    "type '%s' cannot inherit from itself",
	ErrOperatorSignature:   "conversion operator in '%s' must convert from or to its containing type",
	ErrConstantRequired:    "constant '%s' requires a constant initializer",
	ErrNoAccessibleMethod:  "'%s' has no accessible method that accepts these arguments",
	ErrDivisionByZero:      "division by zero occurred while evaluating this expression",
	ErrConstantOverflow:    "constant expression overflows type '%s'",
	ErrOperatorNotDefined:  "operator '%s' is not defined for types '%s' and '%s'",
	ErrUnaryNotDefined:     "operator '%s' is not defined for type '%s'",
	ErrNotAVariable:        "expression '%s' is a value and cannot be the target of an assignment",
	ErrAbstractInstantiate: "'New' cannot be used on class '%s' because it is declared 'MustInherit'",
	ErrEnumUnderlying:      "enums must be declared as an integral type, '%s' is not valid",
	ErrNotMember:           "'%s' is not a member of '%s'",
	ErrNotInvocable:        "expression '%s' is not a method",
	ErrCircularConstant:    "constant '%s' cannot depend on its own value",
	ErrReturnInSub:         "'Return' statement in a Sub or a Set cannot return a value",
	ErrAddressOfOperand:    "'AddressOf' operand must be the name of a method",
	ErrMustImplement:       "'%s' must implement '%s' for interface '%s'",
	ErrMustOverride:        "class '%s' must either be declared 'MustInherit' or override the inherited 'MustOverride' member '%s'",
	ErrTypeAsExpr:          "'%s' is a type and cannot be used as an expression",

	// Generics
	ErrRefConstraint:        "type argument '%s' does not satisfy the 'Class' constraint for type parameter '%s'",
	ErrValueConstraint:      "type argument '%s' does not satisfy the 'Structure' constraint for type parameter '%s'",
	ErrClassConstraint:      "type argument '%s' does not inherit from the constraint type '%s' of type parameter '%s'",
	ErrInterfaceConstraint:  "type argument '%s' does not implement the constraint interface '%s' of type parameter '%s'",
	ErrNewConstraint:        "type argument '%s' must have a public parameterless instance constructor to satisfy the 'New' constraint for type parameter '%s'",
	ErrNewAbstract:          "type argument '%s' is declared 'MustInherit' and does not satisfy the 'New' constraint for type parameter '%s'",
	ErrConflictConstraints:  "constraint '%s' conflicts with the constraint '%s' already specified for type parameter '%s'",
	ErrDuplicateConstraint:  "constraint '%s' is already specified for type parameter '%s'",
	ErrMultipleClassConstr:  "type parameter '%s' can only have one constraint that is a class",
	ErrBadConstraintType:    "'%s' cannot be used as a type constraint",
	ErrCircularConstraint:   "type parameter '%s' cannot be constrained to itself through '%s'",
	ErrCannotInfer:          "type parameter '%s' for '%s' cannot be inferred",
	ErrInferConflict:        "type parameter '%s' for '%s' cannot be inferred: both '%s' and '%s' are possible",
	ErrDuplicateTypeParam:   "type parameter '%s' is already declared",
	ErrTypeParamShadowsType: "type parameter '%s' has the same name as its containing type",

	// CLI - Usage and help
	MsgUsage:          "Usage: vbc <command> [arguments]",
	MsgCommands:       "Commands:",
	MsgCmdCheck:       "  check    Parse and check source files, reporting diagnostics",
	MsgCmdTokens:      "  tokens   Print the token stream seen by the parser",
	MsgCmdGrammar:     "  grammar  Print LALR table statistics and conflicts",
	MsgCmdVersion:     "  version  Print version information",
	MsgCmdHelp:        "  help     Print this help message",
	MsgUseHelp:        "Use \"vbc <command> -h\" for more information about a command.",
	MsgUnknownCommand: "Unknown command: %s",

	// CLI - Check command
	MsgCheckUsage:       "Usage: vbc check [options] <input>...",
	MsgCheckDescription: "Parse and check source files. Each input directory is compiled as an independent project.",
	MsgCheckArgInput:    "  <input>    Input file or directory",
	MsgCheckOptVerbose:  "Verbose output",
	MsgCheckOptStrict:   "Enable Option Strict (overrides vbc.toml)",
	MsgCheckOptDefine:   "Conditional compilation constants, e.g. DEBUG=True,TRACE",
	MsgCheckOptJobs:     "Number of projects checked concurrently",
	MsgCheckCompleted:   "Checked %d file(s), no errors",
	MsgCheckFailed:      "Compilation failed with %d error(s) and %d warning(s)",
	MsgCheckWarnings:    "Compilation succeeded with %d warning(s)",

	// CLI - Tokens command
	MsgTokensUsage:       "Usage: vbc tokens [options] <file>",
	MsgTokensDescription: "Print the tokens that survive conditional compilation.",

	// CLI - Grammar command
	MsgGrammarUsage:       "Usage: vbc grammar",
	MsgGrammarDescription: "Build the LALR(1) tables and print statistics.",
	MsgGrammarStats:       "%d productions, %d states, %d terminals, %d nonterminals",
	MsgGrammarConflicts:   "%d conflict(s) resolved by default rules",

	// CLI - Common errors
	ErrInputRequired:     "Error: input file or directory is required",
	ErrCannotAccessInput: "cannot access input",
	ErrCannotLoadConfig:  "cannot load config",
	ErrCannotReadFile:    "cannot read file",
	ErrNoSourceFiles:     "no .vb files found in %s",
	ErrBadDefine:         "invalid define '%s'",

	// CLI - Info messages
	MsgUsingConfig: "Using config: %s (project: %s)",
	MsgNoConfig:    "No vbc.toml found, using default project: %s",
	MsgParsing:     "Parsing: %s",
	MsgCompiling:   "Compiling %d project(s)",
}
