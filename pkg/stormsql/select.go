package stormsql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/asdine/storm/v3/q"
	"github.com/pkg/errors"
	"github.com/xwb1989/sqlparser"
)

// A SelectClause contains all the parsed SQL data.
type SelectClause struct {
	// SelectedFields is empty for `SELECT *`.
	SelectedFields  []string
	Count           bool
	Tablename       string
	Matcher         q.Matcher
	Skip            int
	Limit           int
	OrderBy         []string
	OrderByReversed bool
}

// ParseSelect parses the given SELECT statement.
func ParseSelect(sql string) (*SelectClause, error) {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse SQL")
	}

	s, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, errors.New("not a select statement")
	}

	sc := SelectClause{
		SelectedFields: []string{},
	}

	// SELECT * ...
	// SELECT ID,Name ...
	// SELECT count(*) ...
	for _, se := range s.SelectExprs {
		switch v := se.(type) {
		case *sqlparser.StarExpr:
		case *sqlparser.AliasedExpr:
			switch v := v.Expr.(type) {
			case *sqlparser.ColName:
				sc.SelectedFields = append(sc.SelectedFields, v.Name.String())
			case *sqlparser.FuncExpr:
				if !v.Name.EqualString("count") {
					return nil, errors.Errorf("unsupported function: %s", v.Name.String())
				}
				sc.Count = true
			default:
				return nil, errors.New("unsupported select expression")
			}
		default:
			return nil, errors.New("unsupported select expression")
		}
	}

	// FROM todos
	if len(s.From) != 1 {
		return nil, errors.New("only one table can be selected")
	}
	table, ok := s.From[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return nil, errors.New("unsupported table expression")
	}
	sc.Tablename = sqlparser.GetTableName(table.Expr).String()

	// WHERE
	sc.Matcher = q.And()
	if s.Where != nil {
		sc.Matcher, err = parseWhereExpr(s.Where.Expr)
		if err != nil {
			return nil, err
		}
	}

	// LIMIT 5
	// LIMIT 2,5
	if s.Limit != nil {
		if s.Limit.Offset != nil {
			if sc.Skip, err = parseInt(s.Limit.Offset); err != nil {
				return nil, errors.Wrap(err, "offset")
			}
		}
		if sc.Limit, err = parseInt(s.Limit.Rowcount); err != nil {
			return nil, errors.Wrap(err, "limit")
		}
	}

	// ORDER BY ID
	// ORDER BY ID DESC
	// ORDER BY UserID DESC, ID ASC     => All will be DESC due to storm limitation
	for _, ob := range s.OrderBy {
		col, ok := ob.Expr.(*sqlparser.ColName)
		if !ok {
			return nil, errors.New("unsupported order by expression")
		}

		if ob.Direction == sqlparser.DescScr {
			sc.OrderByReversed = true
		}
		sc.OrderBy = append(sc.OrderBy, col.Name.String())
	}

	return &sc, nil
}

func parseWhereExpr(expr sqlparser.Expr) (q.Matcher, error) {
	switch v := expr.(type) {
	case *sqlparser.ParenExpr:
		return parseWhereExpr(v.Expr)
	case *sqlparser.ComparisonExpr:
		return parseComparison(v)
	case *sqlparser.IsExpr:
		col, ok := v.Expr.(*sqlparser.ColName)
		if !ok {
			return nil, errors.New("unsupported is expression")
		}

		field := col.Name.String()
		switch v.Operator {
		case sqlparser.IsNullStr:
			return q.Eq(field, nil), nil
		case sqlparser.IsNotNullStr:
			return q.Not(q.Eq(field, nil)), nil
		case sqlparser.IsTrueStr:
			return q.Eq(field, true), nil
		case sqlparser.IsFalseStr:
			return q.Eq(field, false), nil
		}
		return nil, errors.Errorf("unsupported operator: %s", v.Operator)
	case *sqlparser.NotExpr:
		m, err := parseWhereExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		return q.Not(m), nil
	case *sqlparser.AndExpr:
		left, right, err := parseBoth(v.Left, v.Right)
		if err != nil {
			return nil, err
		}
		return q.And(left, right), nil
	case *sqlparser.OrExpr:
		left, right, err := parseBoth(v.Left, v.Right)
		if err != nil {
			return nil, err
		}
		return q.Or(left, right), nil
	}

	return nil, errors.Errorf("unsupported where expression: %s", sqlparser.String(expr))
}

func parseBoth(l, r sqlparser.Expr) (left, right q.Matcher, err error) {
	if left, err = parseWhereExpr(l); err != nil {
		return nil, nil, err
	}
	right, err = parseWhereExpr(r)
	return left, right, err
}

func parseComparison(v *sqlparser.ComparisonExpr) (q.Matcher, error) {
	col, ok := v.Left.(*sqlparser.ColName)
	if !ok {
		return nil, errors.New("the left side of a comparison must be a column")
	}
	field := col.Name.String()

	var value any
	switch sqlvalue := v.Right.(type) {
	case sqlparser.BoolVal:
		value = bool(sqlvalue)
	case sqlparser.ValTuple:
		var tuple []any
		for _, t := range sqlvalue {
			val, ok := t.(*sqlparser.SQLVal)
			if !ok {
				return nil, errors.New("unsupported tuple value")
			}

			v, err := parseSQLVal(val)
			if err != nil {
				return nil, err
			}
			tuple = append(tuple, v)
		}
		value = tuple
	case *sqlparser.SQLVal:
		var err error
		if value, err = parseSQLVal(sqlvalue); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unsupported value: %s", sqlparser.String(v.Right))
	}

	switch v.Operator {
	case sqlparser.EqualStr:
		return q.Eq(field, value), nil
	case sqlparser.NotEqualStr:
		return q.Not(q.Eq(field, value)), nil
	case sqlparser.GreaterThanStr:
		return q.Gt(field, value), nil
	case sqlparser.GreaterEqualStr:
		return q.Gte(field, value), nil
	case sqlparser.LessThanStr:
		return q.Lt(field, value), nil
	case sqlparser.LessEqualStr:
		return q.Lte(field, value), nil
	case sqlparser.InStr:
		return q.In(field, value), nil
	case sqlparser.NotInStr:
		return q.Not(q.In(field, value)), nil
	case sqlparser.LikeStr:
		return q.Re(field, likeToRegexp(fmt.Sprint(value))), nil
	}

	return nil, errors.Errorf("unsupported operator: %s", v.Operator)
}

// likeToRegexp converts the `%` and `_` wildcards of a LIKE pattern.
func likeToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteByte('.')
		default:
			b.WriteString(regexpQuote(r))
		}
	}
	b.WriteByte('$')
	return b.String()
}

func regexpQuote(r rune) string {
	if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
		return `\` + string(r)
	}
	return string(r)
}

func parseInt(expr sqlparser.Expr) (int, error) {
	val, ok := expr.(*sqlparser.SQLVal)
	if !ok || val.Type != sqlparser.IntVal {
		return 0, errors.New("not an integer")
	}
	return strconv.Atoi(string(val.Val))
}

func parseSQLVal(v *sqlparser.SQLVal) (any, error) {
	switch v.Type {
	case sqlparser.StrVal:
		// Dates are compared as time.Time.
		if t, err := dateparse.ParseAny(string(v.Val)); err == nil {
			return t.UTC(), nil
		}
		return string(v.Val), nil
	case sqlparser.IntVal:
		return strconv.Atoi(string(v.Val))
	case sqlparser.FloatVal:
		return strconv.ParseFloat(string(v.Val), 64)
	case sqlparser.HexNum:
		return strconv.ParseInt(string(v.Val[2:]), 16, 64)
	case sqlparser.HexVal:
		return v.HexDecode()
	case sqlparser.BitVal:
		return v.Val[0] == 1, nil
	}

	return nil, errors.Errorf("unsupported value: %s", sqlparser.String(v))
}
