package sqlexpr

// Expression parsing using Pratt parser (precedence climbing).

// parseExpression parses an expression using precedence climbing.
func (p *Parser) parseExpression() Expr {
	return p.parseExpressionWithPrecedence(PrecedenceNone + 1)
}

// parseExpressionWithPrecedence implements Pratt parsing.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) Expr {
	left := p.parsePrefixExpr()
	if left == nil {
		return nil
	}

	for {
		prec := p.getInfixPrecedence()
		if prec < minPrecedence {
			break
		}
		left = p.parseInfixExpr(left, prec)
		if left == nil || len(p.errors) > 0 {
			break
		}
	}

	return left
}

// parsePrefixExpr parses prefix expressions (unary operators and primary expressions).
func (p *Parser) parsePrefixExpr() Expr {
	switch p.token.Type {
	case TOKEN_NOT:
		p.nextToken()
		return &UnaryExpr{Op: TOKEN_NOT, Expr: p.requireOperand(p.parseExpressionWithPrecedence(PrecedenceNot))}
	case TOKEN_MINUS, TOKEN_PLUS, TOKEN_TILDE:
		op := p.token.Type
		p.nextToken()
		return &UnaryExpr{Op: op, Expr: p.requireOperand(p.parseExpressionWithPrecedence(PrecedenceUnary))}
	default:
		return p.parsePrimary()
	}
}

// getInfixPrecedence returns the precedence of the current token as an infix operator.
func (p *Parser) getInfixPrecedence() int {
	switch p.token.Type {
	case TOKEN_OR:
		return PrecedenceOr
	case TOKEN_AND:
		return PrecedenceAnd
	case TOKEN_EQ, TOKEN_NE, TOKEN_LT, TOKEN_GT, TOKEN_LE, TOKEN_GE, TOKEN_NULLSAFE:
		return PrecedenceComparison
	case TOKEN_IS, TOKEN_IN, TOKEN_BETWEEN, TOKEN_LIKE, TOKEN_REGEXP, TOKEN_NOT:
		return PrecedenceComparison
	case TOKEN_PIPE:
		return PrecedenceBitOr
	case TOKEN_AMP:
		return PrecedenceBitAnd
	case TOKEN_PLUS, TOKEN_MINUS, TOKEN_DPIPE:
		return PrecedenceAddition
	case TOKEN_STAR, TOKEN_SLASH, TOKEN_MOD, TOKEN_DIV:
		return PrecedenceMultiply
	case TOKEN_CARET:
		return PrecedenceBitXor
	default:
		return PrecedenceNone
	}
}

// parseInfixExpr parses an infix expression given the left operand.
func (p *Parser) parseInfixExpr(left Expr, prec int) Expr {
	switch p.token.Type {
	case TOKEN_NOT:
		return p.parseNotInfixExpr(left)
	case TOKEN_IS:
		return p.parseIsExpr(left)
	case TOKEN_IN:
		p.nextToken()
		return p.parseInExpr(left, false)
	case TOKEN_BETWEEN:
		p.nextToken()
		return p.parseBetweenExpr(left, false)
	case TOKEN_LIKE, TOKEN_REGEXP:
		regexp := p.check(TOKEN_REGEXP)
		p.nextToken()
		return p.parseLikeExpr(left, false, regexp)
	default:
		op := p.token.Type
		p.nextToken()
		right := p.requireOperand(p.parseExpressionWithPrecedence(prec + 1))
		return &BinaryExpr{Left: left, Op: op, Right: right}
	}
}

// parseNotInfixExpr handles NOT as an infix modifier (NOT IN, NOT BETWEEN, NOT LIKE).
func (p *Parser) parseNotInfixExpr(left Expr) Expr {
	p.nextToken() // consume NOT

	switch p.token.Type {
	case TOKEN_IN:
		p.nextToken()
		return p.parseInExpr(left, true)
	case TOKEN_BETWEEN:
		p.nextToken()
		return p.parseBetweenExpr(left, true)
	case TOKEN_LIKE, TOKEN_REGEXP:
		regexp := p.check(TOKEN_REGEXP)
		p.nextToken()
		return p.parseLikeExpr(left, true, regexp)
	default:
		p.addError("expected IN, BETWEEN, LIKE, or REGEXP after NOT")
		return left
	}
}

// parseIsExpr parses IS [NOT] NULL.
func (p *Parser) parseIsExpr(left Expr) Expr {
	p.nextToken() // consume IS
	isNot := p.match(TOKEN_NOT)
	if !p.expect(TOKEN_NULL) {
		return left
	}
	return &IsNullExpr{Expr: left, Not: isNot}
}

// parseInExpr parses IN (values).
func (p *Parser) parseInExpr(left Expr, not bool) Expr {
	in := &InExpr{Expr: left, Not: not}
	p.expect(TOKEN_LPAREN)
	in.Values = p.parseExpressionList()
	p.expect(TOKEN_RPAREN)
	return in
}

// parseBetweenExpr parses BETWEEN low AND high.
func (p *Parser) parseBetweenExpr(left Expr, not bool) Expr {
	between := &BetweenExpr{Expr: left, Not: not}
	between.Low = p.requireOperand(p.parseExpressionWithPrecedence(PrecedenceBitOr))
	p.expect(TOKEN_AND)
	between.High = p.requireOperand(p.parseExpressionWithPrecedence(PrecedenceBitOr))
	return between
}

// parseLikeExpr parses LIKE/REGEXP pattern.
func (p *Parser) parseLikeExpr(left Expr, not bool, regexp bool) Expr {
	like := &LikeExpr{Expr: left, Not: not, Regexp: regexp}
	like.Pattern = p.requireOperand(p.parseExpressionWithPrecedence(PrecedenceBitOr))
	return like
}

// parseExpressionList parses a comma-separated list of expressions.
func (p *Parser) parseExpressionList() []Expr {
	var exprs []Expr
	for {
		expr := p.parseExpression()
		if expr != nil {
			exprs = append(exprs, expr)
		}
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	return exprs
}

// requireOperand records an error when an operator has no operand.
func (p *Parser) requireOperand(e Expr) Expr {
	if e == nil && len(p.errors) == 0 {
		p.addError("missing operand")
	}
	return e
}
