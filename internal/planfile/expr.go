package planfile

// Var is a named quantity available inside formula expressions. The first
// group are constants, the rest are evaluated against the day under test.
type Var int

const (
	VarTrue Var = iota
	VarFalse
	VarMonday
	VarTuesday
	VarWednesday
	VarThursday
	VarFriday
	VarSaturday
	VarSunday
	// VarJulianDay is the day number in the proleptic Gregorian calendar
	// where day 1 is 0001-01-01.
	VarJulianDay
	VarYear
	// VarYearLength is the number of days in the current year.
	VarYearLength
	// VarYearDay is the day of the year, starting at 1.
	VarYearDay
	// VarYearDayReverse is the day of the year counted from the end, so
	// December 31 is 1.
	VarYearDayReverse
	// VarYearWeek is the week of the year, where week 1 spans day 1 to 7.
	VarYearWeek
	// VarYearWeekReverse counts weeks from the end of the year.
	VarYearWeekReverse
	VarMonth
	// VarMonthLength is the number of days in the current month.
	VarMonthLength
	// VarMonthWeek is the week of the month, where week 1 spans day 1 to 7.
	VarMonthWeek
	// VarMonthWeekReverse counts weeks from the end of the month.
	VarMonthWeekReverse
	VarDay
	// VarDayReverse is the day of the month counted from the end, so the
	// last day is 1.
	VarDayReverse
	VarIsoYear
	// VarIsoYearLength is the length of the current ISO year in days.
	VarIsoYearLength
	VarIsoWeek
	// VarWeekday is the current weekday numbered 1 (Monday) to 7 (Sunday).
	VarWeekday
	// VarEaster is the day of the year of that year's Easter Sunday.
	VarEaster
	VarIsWeekday
	VarIsWeekend
	VarIsLeapYear
	VarIsIsoLeapYear
)

var varNames = map[Var]string{
	VarTrue:             "true",
	VarFalse:            "false",
	VarMonday:           "mon",
	VarTuesday:          "tue",
	VarWednesday:        "wed",
	VarThursday:         "thu",
	VarFriday:           "fri",
	VarSaturday:         "sat",
	VarSunday:           "sun",
	VarJulianDay:        "j",
	VarYear:             "y",
	VarYearLength:       "yl",
	VarYearDay:          "yd",
	VarYearDayReverse:   "yD",
	VarYearWeek:         "yw",
	VarYearWeekReverse:  "yW",
	VarMonth:            "m",
	VarMonthLength:      "ml",
	VarMonthWeek:        "mw",
	VarMonthWeekReverse: "mW",
	VarDay:              "d",
	VarDayReverse:       "D",
	VarIsoYear:          "iy",
	VarIsoYearLength:    "iyl",
	VarIsoWeek:          "iw",
	VarWeekday:          "wd",
	VarEaster:           "e",
	VarIsWeekday:        "isWeekday",
	VarIsWeekend:        "isWeekend",
	VarIsLeapYear:       "isLeapYear",
	VarIsIsoLeapYear:    "isIsoLeapYear",
}

// Name returns the variable's source token.
func (v Var) Name() string {
	return varNames[v]
}

// ParseVar resolves a source token to its variable.
func ParseVar(s string) (Var, bool) {
	for v, name := range varNames {
		if name == s {
			return v, true
		}
	}
	return 0, false
}

// ExprOp enumerates formula expression node kinds.
type ExprOp int

const (
	OpLit ExprOp = iota
	OpVar
	OpParen
	OpNeg
	OpNot
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
	OpXor
)

// Expr is a node of a formula expression tree. Lit, Var, Left and Right are
// populated according to Op; parenthesized groups are kept as explicit nodes
// so formatting can reproduce them.
type Expr struct {
	Op    ExprOp
	Lit   int64
	Var   Var
	Span  Span
	Left  *Expr
	Right *Expr
}
