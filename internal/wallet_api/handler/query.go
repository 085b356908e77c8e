package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paywallet-ledger/internal/history"
)

const maxPageSize = 100

// parseHistoryQuery reads the history filters from the query string. An
// explicit minAmount or maxAmount overrides the matching amountRange bound.
func parseHistoryQuery(c *gin.Context) (history.Query, error) {
	var (
		q   history.Query
		err error
	)

	if q.Direction, err = history.ParseDirection(c.Query("direction")); err != nil {
		return q, err
	}
	if q.Types, err = history.ParseTypes(c.Query("type")); err != nil {
		return q, err
	}
	if q.From, err = history.ParseFrom(c.Query("from")); err != nil {
		return q, err
	}
	if q.To, err = history.ParseTo(c.Query("to")); err != nil {
		return q, err
	}
	if q.MinAmount, q.MaxAmount, err = history.ParseAmountRange(c.Query("amountRange")); err != nil {
		return q, err
	}

	minAmount, err := history.ParseAmountBound("minAmount", c.Query("minAmount"))
	if err != nil {
		return q, err
	}
	if minAmount != nil {
		q.MinAmount = minAmount
	}
	maxAmount, err := history.ParseAmountBound("maxAmount", c.Query("maxAmount"))
	if err != nil {
		return q, err
	}
	if maxAmount != nil {
		q.MaxAmount = maxAmount
	}

	if q.Sort, err = history.ParseSort(c.Query("sort")); err != nil {
		return q, err
	}
	if q.Page, err = positiveInt("page", c.Query("page"), 0); err != nil {
		return q, err
	}
	if q.PageSize, err = positiveInt("pageSize", c.Query("pageSize"), maxPageSize); err != nil {
		return q, err
	}
	return q, nil
}

// positiveInt parses an optional 1-based integer. Zero means absent; limit,
// when set, is the largest accepted value.
func positiveInt(field, s string, limit int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || (limit > 0 && n > limit) {
		return 0, history.ErrInvalidQuery{Field: field, Value: s}
	}
	return n, nil
}
