package eval

import (
	"testing"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/planfile"
)

func vx(v planfile.Var) *planfile.Expr { return &planfile.Expr{Op: planfile.OpVar, Var: v} }

func lx(n int64) *planfile.Expr { return &planfile.Expr{Op: planfile.OpLit, Lit: n} }

func bx(op planfile.ExprOp, left, right *planfile.Expr) *planfile.Expr {
	return &planfile.Expr{Op: op, Left: left, Right: right}
}

func ux(op planfile.ExprOp, operand *planfile.Expr) *planfile.Expr {
	return &planfile.Expr{Op: op, Left: operand}
}

func evalOn(t *testing.T, e *planfile.Expr, date caldate.Date) int64 {
	t.Helper()
	got, err := compileExpr(e).Eval(date)
	if err != nil {
		t.Fatalf("Eval on %v: %v", date, err)
	}
	return got
}

func TestExprVars(t *testing.T) {
	tests := []struct {
		name string
		v    planfile.Var
		date caldate.Date
		want int64
	}{
		{"year", planfile.VarYear, ymd(2024, 3, 10), 2024},
		{"year length leap", planfile.VarYearLength, ymd(2024, 1, 1), 366},
		{"year length common", planfile.VarYearLength, ymd(2023, 1, 1), 365},
		{"year day first", planfile.VarYearDay, ymd(2020, 1, 1), 1},
		{"year day last", planfile.VarYearDay, ymd(2020, 12, 31), 366},
		{"year day reverse first", planfile.VarYearDayReverse, ymd(2020, 1, 1), 366},
		{"year day reverse last", planfile.VarYearDayReverse, ymd(2020, 12, 31), 1},
		{"year week late december", planfile.VarYearWeek, ymd(2020, 12, 30), 53},
		{"year week common year", planfile.VarYearWeek, ymd(2021, 12, 30), 52},
		{"year week last day", planfile.VarYearWeek, ymd(2021, 12, 31), 53},
		{"year week reverse first day", planfile.VarYearWeekReverse, ymd(2020, 1, 1), 53},
		{"year week reverse third day", planfile.VarYearWeekReverse, ymd(2020, 1, 3), 52},
		{"month", planfile.VarMonth, ymd(2024, 3, 10), 3},
		{"month length february", planfile.VarMonthLength, ymd(2024, 2, 1), 29},
		{"month week first", planfile.VarMonthWeek, ymd(2021, 12, 7), 1},
		{"month week second", planfile.VarMonthWeek, ymd(2021, 12, 8), 2},
		{"month week last", planfile.VarMonthWeek, ymd(2021, 12, 31), 5},
		{"month week reverse last day", planfile.VarMonthWeekReverse, ymd(2021, 12, 31), 1},
		{"month week reverse seventh to last", planfile.VarMonthWeekReverse, ymd(2021, 12, 25), 1},
		{"month week reverse eighth to last", planfile.VarMonthWeekReverse, ymd(2021, 12, 24), 2},
		{"month week reverse first day", planfile.VarMonthWeekReverse, ymd(2021, 12, 1), 5},
		{"day", planfile.VarDay, ymd(2024, 3, 10), 10},
		{"day reverse first", planfile.VarDayReverse, ymd(2021, 12, 1), 31},
		{"day reverse last", planfile.VarDayReverse, ymd(2021, 12, 31), 1},
		{"iso year of early january", planfile.VarIsoYear, ymd(2021, 1, 1), 2020},
		{"iso week of early january", planfile.VarIsoWeek, ymd(2021, 1, 1), 53},
		{"iso year length long year", planfile.VarIsoYearLength, ymd(2020, 6, 1), 371},
		{"iso year length short year", planfile.VarIsoYearLength, ymd(2021, 6, 1), 364},
		{"weekday monday", planfile.VarWeekday, ymd(2024, 1, 1), 1},
		{"weekday sunday", planfile.VarWeekday, ymd(2024, 1, 7), 7},
		{"easter ordinal", planfile.VarEaster, ymd(2024, 5, 1), 91},
		{"is weekday", planfile.VarIsWeekday, ymd(2024, 1, 5), 1},
		{"is weekend", planfile.VarIsWeekend, ymd(2024, 1, 6), 1},
		{"is leap year", planfile.VarIsLeapYear, ymd(2024, 8, 1), 1},
		{"is not leap year", planfile.VarIsLeapYear, ymd(2023, 8, 1), 0},
		// The ISO leap year test looks at the calendar year, not the ISO
		// year the day belongs to.
		{"is iso leap year", planfile.VarIsIsoLeapYear, ymd(2020, 6, 1), 1},
		{"is iso leap year early january", planfile.VarIsIsoLeapYear, ymd(2021, 1, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalOn(t, vx(tt.v), tt.date); got != tt.want {
				t.Errorf("%s on %v = %d, want %d", tt.v.Name(), tt.date, got, tt.want)
			}
		})
	}
}

func TestExprJulianDayDelta(t *testing.T) {
	a := evalOn(t, vx(planfile.VarJulianDay), ymd(2024, 3, 1))
	b := evalOn(t, vx(planfile.VarJulianDay), ymd(2024, 3, 10))
	if b-a != 9 {
		t.Errorf("julian day delta = %d, want 9", b-a)
	}
}

func TestExprEasterMatchesYearDay(t *testing.T) {
	// Easter 2024 fell on March 31.
	got := evalOn(t, bx(planfile.OpEq, vx(planfile.VarYearDay), vx(planfile.VarEaster)), ymd(2024, 3, 31))
	if got != 1 {
		t.Errorf("yd = e on Easter Sunday evaluated to %d", got)
	}
}

func TestExprArithmetic(t *testing.T) {
	tests := []struct {
		name string
		expr *planfile.Expr
		want int64
	}{
		{"add", bx(planfile.OpAdd, lx(2), lx(3)), 5},
		{"sub", bx(planfile.OpSub, lx(2), lx(3)), -1},
		{"mul", bx(planfile.OpMul, lx(4), lx(-3)), -12},
		{"div", bx(planfile.OpDiv, lx(7), lx(2)), 3},
		{"div negative floors", bx(planfile.OpDiv, lx(-7), lx(2)), -4},
		{"mod", bx(planfile.OpMod, lx(7), lx(2)), 1},
		{"mod negative stays positive", bx(planfile.OpMod, lx(-7), lx(2)), 1},
		{"neg", ux(planfile.OpNeg, lx(5)), -5},
		{"not truthy", ux(planfile.OpNot, lx(5)), 0},
		{"not falsy", ux(planfile.OpNot, lx(0)), 1},
		{"eq", bx(planfile.OpEq, lx(3), lx(3)), 1},
		{"neq", bx(planfile.OpNeq, lx(3), lx(3)), 0},
		{"lt", bx(planfile.OpLt, lx(2), lx(3)), 1},
		{"lte equal", bx(planfile.OpLte, lx(3), lx(3)), 1},
		{"gt", bx(planfile.OpGt, lx(2), lx(3)), 0},
		{"gte", bx(planfile.OpGte, lx(3), lx(2)), 1},
		{"and truthy ints", bx(planfile.OpAnd, lx(2), lx(3)), 1},
		{"and zero", bx(planfile.OpAnd, lx(2), lx(0)), 0},
		{"or", bx(planfile.OpOr, lx(0), lx(7)), 1},
		{"xor same", bx(planfile.OpXor, lx(2), lx(3)), 0},
		{"xor mixed", bx(planfile.OpXor, lx(0), lx(3)), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalOn(t, tt.expr, ymd(2024, 1, 1)); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExprDivideByZero(t *testing.T) {
	tests := []struct {
		name string
		op   planfile.ExprOp
		kind ErrKind
	}{
		{"div", planfile.OpDiv, ErrDivByZero},
		{"mod", planfile.OpMod, ErrModByZero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date := ymd(2024, 3, 10)
			_, err := compileExpr(bx(tt.op, lx(5), lx(0))).Eval(date)
			if err == nil {
				t.Fatal("want error")
			}
			if err.Kind != tt.kind {
				t.Errorf("error kind = %v, want %v", err.Kind, tt.kind)
			}
			if err.Date != date {
				t.Errorf("error date = %v, want %v", err.Date, date)
			}
		})
	}
}

func TestCompileExprConstants(t *testing.T) {
	tests := []struct {
		name string
		expr *planfile.Expr
		want int64
	}{
		{"true", vx(planfile.VarTrue), 1},
		{"false", vx(planfile.VarFalse), 0},
		{"monday", vx(planfile.VarMonday), 1},
		{"sunday", vx(planfile.VarSunday), 7},
		{"nil is true", nil, 1},
		{"paren collapses", ux(planfile.OpParen, lx(42)), 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled := compileExpr(tt.expr)
			if compiled.Op != planfile.OpLit {
				t.Fatalf("compiled op = %v, want literal", compiled.Op)
			}
			if compiled.Lit != tt.want {
				t.Errorf("compiled lit = %d, want %d", compiled.Lit, tt.want)
			}
		})
	}
}

func TestExprWeekdayAgainstWeekend(t *testing.T) {
	// "wd >= 6" and "isWeekend" agree on every day of a week.
	ge := bx(planfile.OpGte, vx(planfile.VarWeekday), lx(6))
	for day := 1; day <= 7; day++ {
		date := ymd(2024, 1, day)
		if got, want := evalOn(t, ge, date), evalOn(t, vx(planfile.VarIsWeekend), date); got != want {
			t.Errorf("%v: wd >= 6 is %d, isWeekend is %d", date, got, want)
		}
	}
}
