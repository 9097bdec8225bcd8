package sqlexpr

import (
	"fmt"
	"strings"
)

// Primary expression parsing: literals, column refs, function calls, CASE,
// CAST, INTERVAL, parenthesized expressions.

// parsePrimary parses a primary expression.
func (p *Parser) parsePrimary() Expr {
	switch p.token.Type {
	case TOKEN_NUMBER:
		lit := &Literal{Type: LiteralNumber, Value: p.token.Literal}
		p.nextToken()
		return lit

	case TOKEN_STRING:
		lit := &Literal{Type: LiteralString, Value: p.token.Literal}
		p.nextToken()
		return lit

	case TOKEN_TRUE:
		p.nextToken()
		return &Literal{Type: LiteralBool, Value: "true"}

	case TOKEN_FALSE:
		p.nextToken()
		return &Literal{Type: LiteralBool, Value: "false"}

	case TOKEN_NULL:
		p.nextToken()
		return &Literal{Type: LiteralNull, Value: "NULL"}

	case TOKEN_CASE:
		return p.parseCaseExpr()

	case TOKEN_CAST:
		return p.parseCastExpr()

	case TOKEN_INTERVAL:
		return p.parseIntervalExpr()

	case TOKEN_IDENT:
		return p.parseIdentifierExpr()

	case TOKEN_LPAREN:
		return p.parseParenExpr()

	case TOKEN_ILLEGAL:
		p.addError(fmt.Sprintf("illegal input: %s", p.token.Literal))
		return nil

	case TOKEN_EOF:
		p.addError("unexpected end of expression")
		return nil

	default:
		p.addError(fmt.Sprintf("unexpected token in expression: %s (%q)", p.token.Type, p.token.Literal))
		p.nextToken()
		return nil
	}
}

// parseIdentifierExpr parses an identifier (column ref or function call).
func (p *Parser) parseIdentifierExpr() Expr {
	first := p.token
	p.nextToken()

	// Function call: name(...)
	if !first.Quoted && p.check(TOKEN_LPAREN) {
		return p.parseFuncCall(first.Literal)
	}

	// Qualified name: db.table.column or table.column
	if p.check(TOKEN_DOT) {
		return p.parseQualifiedRef(first.Literal)
	}

	return NameRef(first.Literal)
}

// parseQualifiedRef parses table.column or db.table.column.
func (p *Parser) parseQualifiedRef(firstPart string) Expr {
	parts := []string{firstPart}

	for p.match(TOKEN_DOT) {
		if !p.check(TOKEN_IDENT) {
			p.addError(fmt.Sprintf("expected identifier after '.', got %s", p.token.Type))
			return nil
		}
		parts = append(parts, p.token.Literal)
		p.nextToken()
	}

	switch len(parts) {
	case 2:
		return &ColumnRef{Qualifier: &TableName{Table: parts[0]}, Binding: ByName{Name: parts[1]}}
	case 3:
		return &ColumnRef{Qualifier: &TableName{DB: parts[0], Table: parts[1]}, Binding: ByName{Name: parts[2]}}
	default:
		p.addError(fmt.Sprintf("too many qualifiers in column reference %q", strings.Join(parts, ".")))
		return nil
	}
}

// parseFuncCall parses name([DISTINCT] args) or name(*).
func (p *Parser) parseFuncCall(name string) Expr {
	fn := &FuncCall{Name: name}

	p.expect(TOKEN_LPAREN)

	if p.check(TOKEN_STAR) {
		fn.Star = true
		p.nextToken()
	} else if !p.check(TOKEN_RPAREN) {
		if p.match(TOKEN_DISTINCT) {
			fn.Distinct = true
		}
		fn.Args = p.parseExpressionList()
	}

	p.expect(TOKEN_RPAREN)
	return fn
}

// parseCaseExpr parses a CASE expression.
func (p *Parser) parseCaseExpr() Expr {
	p.expect(TOKEN_CASE)
	caseExpr := &CaseExpr{}

	if !p.check(TOKEN_WHEN) {
		caseExpr.Operand = p.parseExpression()
	}

	for p.match(TOKEN_WHEN) {
		when := WhenClause{}
		when.Condition = p.requireOperand(p.parseExpression())
		p.expect(TOKEN_THEN)
		when.Result = p.requireOperand(p.parseExpression())
		caseExpr.Whens = append(caseExpr.Whens, when)
	}
	if len(caseExpr.Whens) == 0 {
		p.addError("CASE requires at least one WHEN clause")
	}

	if p.match(TOKEN_ELSE) {
		caseExpr.Else = p.requireOperand(p.parseExpression())
	}

	p.expect(TOKEN_END)
	return caseExpr
}

// parseCastExpr parses CAST(expr AS type).
func (p *Parser) parseCastExpr() Expr {
	p.expect(TOKEN_CAST)
	p.expect(TOKEN_LPAREN)

	cast := &CastExpr{}
	cast.Expr = p.requireOperand(p.parseExpression())
	p.expect(TOKEN_AS)
	cast.TypeName = p.parseTypeName()

	p.expect(TOKEN_RPAREN)
	return cast
}

// parseTypeName parses a type name with optional parameters: BIGINT,
// VARCHAR(64), DECIMAL(10,2).
func (p *Parser) parseTypeName() string {
	if !p.check(TOKEN_IDENT) {
		p.addError("expected type name")
		return ""
	}
	typeName := strings.ToUpper(p.token.Literal)
	p.nextToken()

	if p.match(TOKEN_LPAREN) {
		var params []string
		for p.check(TOKEN_NUMBER) {
			params = append(params, p.token.Literal)
			p.nextToken()
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
		p.expect(TOKEN_RPAREN)
		typeName += "(" + strings.Join(params, ",") + ")"
	}

	return typeName
}

// parseIntervalExpr parses INTERVAL value unit.
func (p *Parser) parseIntervalExpr() Expr {
	p.nextToken() // consume INTERVAL
	iv := &IntervalExpr{Value: p.requireOperand(p.parsePrimary())}
	if !p.check(TOKEN_IDENT) {
		p.addError("expected interval unit")
		return iv
	}
	iv.Unit = strings.ToUpper(p.token.Literal)
	p.nextToken()
	return iv
}

// parseParenExpr parses a parenthesized expression.
func (p *Parser) parseParenExpr() Expr {
	p.expect(TOKEN_LPAREN)
	expr := p.requireOperand(p.parseExpression())
	p.expect(TOKEN_RPAREN)
	return &ParenExpr{Expr: expr}
}
