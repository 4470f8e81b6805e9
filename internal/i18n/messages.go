package i18n

// Message keys for lexer and preprocessor diagnostics
const (
	ErrIllegalChar        = "lexer.illegal_char"         // args: char
	ErrUnterminatedString = "lexer.unterminated_string"  // no args
	ErrBadCharLiteral     = "lexer.bad_char_literal"     // no args
	ErrBadDateLiteral     = "lexer.bad_date_literal"     // args: text
	ErrLiteralOverflow    = "lexer.literal_overflow"     // args: text
	ErrBadNumber          = "lexer.bad_number"           // args: text
	ErrEndIfExpected      = "preproc.endif_expected"     // no args
	ErrDirectiveNoIf      = "preproc.directive_no_if"    // no args
	ErrElseIfNoIf         = "preproc.elseif_no_if"       // no args
	ErrElseNoIf           = "preproc.else_no_if"         // no args
	ErrElseIfAfterElse    = "preproc.elseif_after_else"  // no args
	ErrBadDirective       = "preproc.bad_directive"      // args: directive
	ErrBadDirectiveExpr   = "preproc.bad_directive_expr" // args: detail
)

// Message keys for parser diagnostics
const (
	ErrSyntax          = "parser.syntax"           // args: got, expected list
	ErrUnrecoverable   = "parser.unrecoverable"    // no args
	ErrDuplicateLocal  = "parser.duplicate_local"  // args: name
	ErrDuplicateParam  = "parser.duplicate_param"  // args: name
	ErrMismatchedEnd   = "parser.mismatched_end"   // args: expected, got
	ErrNextMismatch    = "parser.next_mismatch"    // args: expected, got
	ErrInvalidOption   = "parser.invalid_option"   // args: option
	ErrExitOutsideLoop = "parser.exit_outside"     // args: kind
	ErrDuplicateType   = "parser.duplicate_type"   // args: name, container
	ErrModifierInvalid = "parser.modifier_invalid" // args: modifier, declaration kind
)

// Message keys for binding and conversion diagnostics
const (
	ErrNameNotDeclared     = "bind.name_not_declared"    // args: name
	ErrTypeNotDefined      = "bind.type_not_defined"     // args: name
	ErrTypeArgCount        = "bind.type_arg_count"       // args: type, want, got
	ErrArgCount            = "bind.arg_count"            // args: method, want, got
	ErrCannotConvert       = "bind.cannot_convert"       // args: from, to
	ErrNotRepresentable    = "bind.not_representable"    // args: type
	ErrStrictNarrowing     = "bind.strict_narrowing"     // args: from, to
	ErrDelegateSignature   = "bind.delegate_signature"   // args: method, delegate
	ErrInheritsNonClass    = "bind.inherits_non_class"   // args: class, base
	ErrImplementsNonIface  = "bind.implements_non_iface" // args: type, iface
	ErrInheritanceCycle    = "bind.inheritance_cycle"    // args: type
	ErrOperatorSignature   = "bind.operator_signature"   // args: type
	ErrConstantRequired    = "bind.constant_required"    // args: name
	ErrNoAccessibleMethod  = "bind.no_accessible_method" // args: name
	ErrDivisionByZero      = "bind.division_by_zero"     // no args
	ErrConstantOverflow    = "bind.constant_overflow"    // args: type
	ErrOperatorNotDefined  = "bind.operator_not_defined" // args: op, left, right
	ErrUnaryNotDefined     = "bind.unary_not_defined"    // args: op, operand
	ErrNotAVariable        = "bind.not_a_variable"       // args: expression
	ErrAbstractInstantiate = "bind.abstract_instantiate" // args: type
	ErrEnumUnderlying      = "bind.enum_underlying"      // args: type
	ErrNotMember           = "bind.not_member"           // args: name, type
	ErrNotInvocable        = "bind.not_invocable"        // args: expression
	ErrCircularConstant    = "bind.circular_constant"    // args: name
	ErrReturnInSub         = "bind.return_in_sub"        // no args
	ErrAddressOfOperand    = "bind.addressof_operand"    // no args
	ErrMustImplement       = "bind.must_implement"       // args: type, member, iface
	ErrMustOverride        = "bind.must_override"        // args: class, member
	ErrTypeAsExpr          = "bind.type_as_expr"         // args: type
)

// Message keys for generic constraint diagnostics
const (
	ErrRefConstraint        = "generic.ref_constraint"       // args: arg, param
	ErrValueConstraint      = "generic.value_constraint"     // args: arg, param
	ErrClassConstraint      = "generic.class_constraint"     // args: arg, constraint, param
	ErrInterfaceConstraint  = "generic.interface_constraint" // args: arg, interface, param
	ErrNewConstraint        = "generic.new_constraint"       // args: arg, param
	ErrNewAbstract          = "generic.new_abstract"         // args: arg, param
	ErrConflictConstraints  = "generic.conflict_constraints" // args: constraint, other, param
	ErrDuplicateConstraint  = "generic.duplicate_constraint" // args: constraint, param
	ErrMultipleClassConstr  = "generic.multiple_class"       // args: param
	ErrBadConstraintType    = "generic.bad_constraint_type"  // args: type
	ErrCircularConstraint   = "generic.circular_constraint"  // args: param, other
	ErrCannotInfer          = "generic.cannot_infer"         // args: param, method
	ErrInferConflict        = "generic.infer_conflict"       // args: param, method, first, second
	ErrDuplicateTypeParam   = "generic.duplicate_type_param" // args: name
	ErrTypeParamShadowsType = "generic.type_param_shadows"   // args: name
)

// Message keys for CLI
const (
	// Usage and help
	MsgUsage          = "cli.usage"
	MsgCommands       = "cli.commands"
	MsgCmdCheck       = "cli.cmd_check"
	MsgCmdTokens      = "cli.cmd_tokens"
	MsgCmdGrammar     = "cli.cmd_grammar"
	MsgCmdVersion     = "cli.cmd_version"
	MsgCmdHelp        = "cli.cmd_help"
	MsgUseHelp        = "cli.use_help"
	MsgUnknownCommand = "cli.unknown_command" // args: command

	// Check command
	MsgCheckUsage       = "cli.check_usage"
	MsgCheckDescription = "cli.check_description"
	MsgCheckArgInput    = "cli.check_arg_input"
	MsgCheckOptVerbose  = "cli.check_opt_verbose"
	MsgCheckOptStrict   = "cli.check_opt_strict"
	MsgCheckOptDefine   = "cli.check_opt_define"
	MsgCheckOptJobs     = "cli.check_opt_jobs"
	MsgCheckCompleted   = "cli.check_completed" // args: files
	MsgCheckFailed      = "cli.check_failed"    // args: errors, warnings
	MsgCheckWarnings    = "cli.check_warnings"  // args: warnings

	// Tokens command
	MsgTokensUsage       = "cli.tokens_usage"
	MsgTokensDescription = "cli.tokens_description"

	// Grammar command
	MsgGrammarUsage       = "cli.grammar_usage"
	MsgGrammarDescription = "cli.grammar_description"
	MsgGrammarStats       = "cli.grammar_stats"     // args: productions, states, terminals, nonterminals
	MsgGrammarConflicts   = "cli.grammar_conflicts" // args: count

	// Common errors
	ErrInputRequired     = "cli.input_required"
	ErrCannotAccessInput = "cli.cannot_access_input"
	ErrCannotLoadConfig  = "cli.cannot_load_config"
	ErrCannotReadFile    = "cli.cannot_read_file"
	ErrNoSourceFiles     = "cli.no_source_files" // args: dir
	ErrBadDefine         = "cli.bad_define"      // args: define

	// Info messages
	MsgUsingConfig = "cli.using_config" // args: configPath, project
	MsgNoConfig    = "cli.no_config"    // args: project
	MsgParsing     = "cli.parsing"      // args: path
	MsgCompiling   = "cli.compiling"    // args: count
)
