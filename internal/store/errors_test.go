package store

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	nf := NewNotFoundError(EntityUser, "u1")
	assert.True(t, IsNotFound(nf))
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", nf)))
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.Equal(t, "store: user not found (id=u1)", nf.Error())
	assert.False(t, IsNotFound(nil))

	ce := NewConstraintError("duplicate edge", sql.ErrNoRows)
	assert.True(t, IsConstraintError(ce))
	assert.True(t, errors.Is(ce, sql.ErrNoRows))
	assert.False(t, IsNotFound(ce))

	qe := NewQueryError(EntityPost, OpFindAll, errors.New("conn reset"))
	assert.True(t, IsQueryError(fmt.Errorf("x: %w", qe)))
	assert.Equal(t, "store: find_all post: conn reset", qe.Error())
	assert.False(t, IsConstraintError(qe))
}
