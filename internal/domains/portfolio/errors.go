package portfolio

import "errors"

var (
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrDomainChanged     = errors.New("custom domain changed during verification")
)
