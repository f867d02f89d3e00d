package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"delphiwatch/app/rules"
)

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
	}

	if count, err := h.deliveries.GetDeliveryCount(c.Request.Context()); err == nil {
		health["deliveries"] = count
	} else {
		slog.Error("Database error", "operation", "delivery_count", "error", err)
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	health["loaded_rules"] = h.rulesCache.Get().Len()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats := map[string]interface{}{
		"rules": map[string]interface{}{
			"total":    h.rulesCache.Get().Len(),
			"keywords": h.rulesCache.Get().CountByKind(rules.KindKeyword),
			"authors":  h.rulesCache.Get().CountByKind(rules.KindAuthor),
		},
	}

	if count, err := h.deliveries.GetDeliveryCount(ctx); err == nil {
		stats["delivered_total"] = count
	}

	if position, err := h.cursor.Get(ctx); err == nil {
		stats["cursor"] = position
	}

	status := h.scheduler.Status()
	scheduler := map[string]interface{}{
		"cycles_run":           status.CyclesRun,
		"consecutive_failures": status.ConsecutiveFailures,
		"last_error":           status.LastError,
	}
	if !status.LastCycleAt.IsZero() {
		scheduler["last_cycle_at"] = status.LastCycleAt.Format(time.RFC3339)
		scheduler["last_cycle"] = map[string]interface{}{
			"total":      status.LastResult.Total,
			"matched":    status.LastResult.Matched,
			"delivered":  status.LastResult.Delivered,
			"duplicates": status.LastResult.Duplicates,
			"failed":     status.LastResult.Failed,
		}
	}
	stats["scheduler"] = scheduler

	if recent, err := h.deliveries.GetRecentDeliveries(ctx, 10); err == nil {
		entries := make([]map[string]interface{}, 0, len(recent))
		for _, d := range recent {
			entries = append(entries, map[string]interface{}{
				"post_id":      d.PostID,
				"title":        d.Title,
				"matched_rule": d.MatchedRule,
				"delivered_at": d.DeliveredAt.Format(time.RFC3339),
			})
		}
		stats["recent_deliveries"] = entries
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListRules(c *gin.Context) {
	set := h.rulesCache.Get()

	entries := make([]map[string]string, 0, set.Len())
	for _, rule := range set.Rules() {
		entries = append(entries, map[string]string{
			"kind":    string(rule.Kind),
			"pattern": rule.Pattern,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"rules": entries,
		"total": len(entries),
		"file":  h.rulesCache.Path(),
	})
}

func (h *Handler) APIReloadRules(c *gin.Context) {
	if err := h.rulesCache.Reload(); err != nil {
		slog.Error("Error reloading rules", "file", h.rulesCache.Path(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload rules",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Rules reloaded successfully",
		"rules":   h.rulesCache.Get().Len(),
	})
}
