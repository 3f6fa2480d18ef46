package eval

import (
	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/planfile"
)

// Expr is a compiled formula expression. Compilation strips parentheses and
// lowers the boolean and weekday constants to literals, so evaluation only
// sees calendar variables.
type Expr struct {
	Op    planfile.ExprOp
	Lit   int64
	Var   planfile.Var
	Span  planfile.Span
	Left  *Expr
	Right *Expr
}

// compileExpr lowers a file model expression for evaluation. A nil
// expression compiles to the constant true.
func compileExpr(e *planfile.Expr) *Expr {
	if e == nil {
		return &Expr{Op: planfile.OpLit, Lit: 1}
	}
	switch e.Op {
	case planfile.OpParen:
		inner := compileExpr(e.Left)
		inner.Span = e.Span
		return inner
	case planfile.OpVar:
		if lit, ok := constantValue(e.Var); ok {
			return &Expr{Op: planfile.OpLit, Lit: lit, Span: e.Span}
		}
		return &Expr{Op: planfile.OpVar, Var: e.Var, Span: e.Span}
	case planfile.OpLit:
		return &Expr{Op: planfile.OpLit, Lit: e.Lit, Span: e.Span}
	default:
		return &Expr{
			Op:    e.Op,
			Span:  e.Span,
			Left:  compileExpr(e.Left),
			Right: compileExpr(e.Right),
		}
	}
}

func constantValue(v planfile.Var) (int64, bool) {
	switch v {
	case planfile.VarTrue:
		return 1, true
	case planfile.VarFalse:
		return 0, true
	case planfile.VarMonday, planfile.VarTuesday, planfile.VarWednesday,
		planfile.VarThursday, planfile.VarFriday, planfile.VarSaturday,
		planfile.VarSunday:
		return int64(v-planfile.VarMonday) + 1, true
	default:
		return 0, false
	}
}

// Eval computes the expression's value on a day.
func (e *Expr) Eval(date caldate.Date) (int64, *Error) {
	switch e.Op {
	case planfile.OpLit:
		return e.Lit, nil
	case planfile.OpVar:
		return evalVar(e.Var, date, e.Span)
	case planfile.OpNeg:
		v, err := e.Left.Eval(date)
		if err != nil {
			return 0, err
		}
		return -v, nil
	case planfile.OpNot:
		v, err := e.Left.Eval(date)
		if err != nil {
			return 0, err
		}
		return boolVal(v == 0), nil
	}

	left, err := e.Left.Eval(date)
	if err != nil {
		return 0, err
	}
	right, err := e.Right.Eval(date)
	if err != nil {
		return 0, err
	}
	switch e.Op {
	case planfile.OpAdd:
		return left + right, nil
	case planfile.OpSub:
		return left - right, nil
	case planfile.OpMul:
		return left * right, nil
	case planfile.OpDiv:
		if right == 0 {
			return 0, &Error{Kind: ErrDivByZero, File: -1, Span: e.Span, Date: date}
		}
		return euclidDiv64(left, right), nil
	case planfile.OpMod:
		if right == 0 {
			return 0, &Error{Kind: ErrModByZero, File: -1, Span: e.Span, Date: date}
		}
		return euclidMod64(left, right), nil
	case planfile.OpEq:
		return boolVal(left == right), nil
	case planfile.OpNeq:
		return boolVal(left != right), nil
	case planfile.OpLt:
		return boolVal(left < right), nil
	case planfile.OpLte:
		return boolVal(left <= right), nil
	case planfile.OpGt:
		return boolVal(left > right), nil
	case planfile.OpGte:
		return boolVal(left >= right), nil
	case planfile.OpAnd:
		return boolVal(left != 0 && right != 0), nil
	case planfile.OpOr:
		return boolVal(left != 0 || right != 0), nil
	case planfile.OpXor:
		return boolVal((left != 0) != (right != 0)), nil
	default:
		return 0, nil
	}
}

func evalVar(v planfile.Var, date caldate.Date, span planfile.Span) (int64, *Error) {
	switch v {
	case planfile.VarJulianDay:
		return int64(date.RataDie()), nil
	case planfile.VarYear:
		return int64(date.Year), nil
	case planfile.VarYearLength:
		return int64(caldate.YearLength(date.Year)), nil
	case planfile.VarYearDay:
		return int64(date.Ordinal()), nil
	case planfile.VarYearDayReverse:
		return int64(caldate.YearLength(date.Year) - date.Ordinal() + 1), nil
	case planfile.VarYearWeek:
		return int64((date.Ordinal()-1)/7 + 1), nil
	case planfile.VarYearWeekReverse:
		return int64((caldate.YearLength(date.Year)-date.Ordinal())/7 + 1), nil
	case planfile.VarMonth:
		return int64(date.Month), nil
	case planfile.VarMonthLength:
		return int64(caldate.MonthLength(date.Year, date.Month)), nil
	case planfile.VarMonthWeek:
		return int64((date.Day-1)/7 + 1), nil
	case planfile.VarMonthWeekReverse:
		return int64((caldate.MonthLength(date.Year, date.Month)-date.Day)/7 + 1), nil
	case planfile.VarDay:
		return int64(date.Day), nil
	case planfile.VarDayReverse:
		return int64(caldate.MonthLength(date.Year, date.Month) - date.Day + 1), nil
	case planfile.VarIsoYear:
		year, _ := date.ISOWeek()
		return int64(year), nil
	case planfile.VarIsoYearLength:
		year, _ := date.ISOWeek()
		return int64(caldate.ISOYearLength(year)), nil
	case planfile.VarIsoWeek:
		_, week := date.ISOWeek()
		return int64(week), nil
	case planfile.VarWeekday:
		return int64(date.Weekday().Number()), nil
	case planfile.VarEaster:
		ordinal, err := caldate.EasterOrdinal(date.Year)
		if err != nil {
			return 0, &Error{Kind: ErrEaster, File: -1, Span: span, Date: date, Msg: err.Error()}
		}
		return int64(ordinal), nil
	case planfile.VarIsWeekday:
		return boolVal(!date.Weekday().IsWeekend()), nil
	case planfile.VarIsWeekend:
		return boolVal(date.Weekday().IsWeekend()), nil
	case planfile.VarIsLeapYear:
		return boolVal(caldate.IsLeapYear(date.Year)), nil
	case planfile.VarIsIsoLeapYear:
		return boolVal(caldate.IsISOLeapYear(date.Year)), nil
	default:
		return 0, nil
	}
}

func boolVal(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// euclidDiv64 and euclidMod64 divide with a never-negative remainder, so
// cyclic formulas like "yd % 14 = 3" behave the same on both sides of an
// epoch.
func euclidDiv64(a, b int64) int64 {
	q := a / b
	if a%b < 0 {
		if b > 0 {
			q--
		} else {
			q++
		}
	}
	return q
}

func euclidMod64(a, b int64) int64 {
	m := a % b
	if m < 0 {
		if b > 0 {
			m += b
		} else {
			m -= b
		}
	}
	return m
}
