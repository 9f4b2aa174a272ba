package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aditisaurus/pixxel/models"
)

func TestQuotaLimits(t *testing.T) {
	quota := NewQuota(3)

	t.Run("free plan capped at configured limit", func(t *testing.T) {
		assert.Equal(t, 3, quota.LimitFor(models.PlanFree))
		assert.True(t, quota.Allows(models.PlanFree, 0))
		assert.True(t, quota.Allows(models.PlanFree, 2))
		assert.False(t, quota.Allows(models.PlanFree, 3))
		assert.False(t, quota.Allows(models.PlanFree, 5))
	})

	t.Run("pro plan is unlimited", func(t *testing.T) {
		assert.Equal(t, UnlimitedProjects, quota.LimitFor(models.PlanPro))
		assert.True(t, quota.Allows(models.PlanPro, 0))
		assert.True(t, quota.Allows(models.PlanPro, 10000))
	})

	t.Run("unknown plan falls back to free limit", func(t *testing.T) {
		assert.Equal(t, 3, quota.LimitFor(models.Plan("enterprise")))
		assert.False(t, quota.Allows(models.Plan("enterprise"), 3))
	})

	t.Run("zero config uses default", func(t *testing.T) {
		q := NewQuota(0)
		assert.Equal(t, 3, q.LimitFor(models.PlanFree))
	})

	t.Run("negative config means unlimited free plan", func(t *testing.T) {
		q := NewQuota(-1)
		assert.True(t, q.Allows(models.PlanFree, 100))
	})
}

func TestQuotaExceededError(t *testing.T) {
	quota := NewQuota(3)
	err := quota.Exceeded(models.PlanFree)

	assert.Equal(t, models.PlanFree, err.Plan)
	assert.Equal(t, 3, err.Limit)
	assert.Contains(t, err.Error(), "free plan limited to 3 projects")
	assert.Contains(t, err.Error(), "Upgrade to Pro")
}
