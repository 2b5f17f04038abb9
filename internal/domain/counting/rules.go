package counting

// ModeRule describes how a count mode behaves inside the workflow.
// The table below is the single source of truth for the "image de stock"
// exception: config validation, assignment and readiness checks all read it.
type ModeRule struct {
	// AllowsOperator reports whether an operator session may be attached
	// to an assignment for this mode.
	AllowsOperator bool

	// RequiresOperatorAssignment reports whether a pass of this mode must
	// carry an operator-backed assignment before its job can become PRET.
	RequiresOperatorAssignment bool

	// FirstOnly restricts the mode to the first pass of an inventory.
	FirstOnly bool
}

var modeRules = map[CountMode]ModeRule{
	ModeEnVrac:       {AllowsOperator: true, RequiresOperatorAssignment: true},
	ModeParArticle:   {AllowsOperator: true, RequiresOperatorAssignment: true},
	ModeImageDeStock: {FirstOnly: true},
}

// RuleFor returns the rule for a mode. Unknown modes get a zero rule.
func RuleFor(mode CountMode) ModeRule {
	return modeRules[mode]
}
