package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// validMeals is the set of allowed values for the meal_type enum.
// Reject unknown values with 400 rather than letting the DB return a cryptic 500.
var validMeals = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

/* ─── Totals ─────────────────────────────────────────────────────────── */

// targetTotals is the profile's current target set as a macroTotals.
func targetTotals(p *profile) macroTotals {
	return macroTotals{
		Calories: p.Calories,
		ProteinG: float64(p.ProteinG),
		CarbsG:   float64(p.CarbsG),
		FatG:     float64(p.FatG),
	}
}

// sumIntake adds up calories and grams over items. Missing grams count as zero.
func sumIntake(items []intakeItem) macroTotals {
	var t macroTotals
	for _, item := range items {
		t.Calories += item.Calories
		if item.ProteinG != nil {
			t.ProteinG += *item.ProteinG
		}
		if item.CarbsG != nil {
			t.CarbsG += *item.CarbsG
		}
		if item.FatG != nil {
			t.FatG += *item.FatG
		}
	}
	return t
}

// remainingOf is target minus consumed, field by field. Negative values mean
// the target was exceeded.
func remainingOf(target, consumed macroTotals) macroTotals {
	return macroTotals{
		Calories: target.Calories - consumed.Calories,
		ProteinG: target.ProteinG - consumed.ProteinG,
		CarbsG:   target.CarbsG - consumed.CarbsG,
		FatG:     target.FatG - consumed.FatG,
	}
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getDailySummary returns intake items, consumed totals, targets and what is
// left for a given date.
// GET /api/intake/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailySummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))

	// Validate date format before querying; an invalid value silently returns no rows.
	if _, err := time.Parse("2006-01-02", date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	items, err := queryMany[intakeItem](h.db, c,
		`SELECT * FROM intake_items
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch items")
		return
	}
	// Ensure items is an empty array (not null) in JSON
	if items == nil {
		items = []intakeItem{}
	}

	p, err := h.loadProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	targets := targetTotals(&p)
	consumed := sumIntake(items)
	c.JSON(http.StatusOK, dailySummary{
		Date:      date,
		Targets:   targets,
		Consumed:  consumed,
		Remaining: remainingOf(targets, consumed),
		Items:     items,
	})
}

// getWeekSummary returns per-day intake totals for the Mon–Sun week containing
// week_start. Days with no logged items are included with has_data=false.
// GET /api/intake/week-summary?week_start=YYYY-MM-DD (defaults to current week).
func (h *Handler) getWeekSummary(c *gin.Context) {
	userID := c.GetInt("user_id")

	// Parse week_start; default to the current Monday.
	var weekStart time.Time
	if s := c.Query("week_start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid week_start, expected YYYY-MM-DD")
			return
		}
		weekStart = t
	} else {
		weekStart = currentMonday()
	}
	weekEnd := weekStart.AddDate(0, 0, 6)

	p, err := h.loadProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	rows, err := queryMany[intakeDayDBRow](h.db, c,
		`SELECT
			date,
			COALESCE(SUM(calories),  0) AS calories,
			COALESCE(SUM(protein_g), 0) AS protein_g,
			COALESCE(SUM(carbs_g),   0) AS carbs_g,
			COALESCE(SUM(fat_g),     0) AS fat_g
		 FROM intake_items
		 WHERE user_id = @userID AND date >= @weekStart AND date <= @weekEnd
		 GROUP BY date`,
		pgx.NamedArgs{
			"userID":    userID,
			"weekStart": weekStart.Format("2006-01-02"),
			"weekEnd":   weekEnd.Format("2006-01-02"),
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch week data")
		return
	}

	c.JSON(http.StatusOK, buildWeek(weekStart, targetTotals(&p), rows))
}

// buildWeek lays rows out over the 7 days from weekStart, filling zeros for
// days with no data.
func buildWeek(weekStart time.Time, targets macroTotals, rows []intakeDayDBRow) []intakeDaySummary {
	// Index DB rows by date string for O(1) merge.
	rowByDate := make(map[string]intakeDayDBRow, len(rows))
	for _, r := range rows {
		rowByDate[r.Date.Time.Format("2006-01-02")] = r
	}

	result := make([]intakeDaySummary, 7)
	for i := 0; i < 7; i++ {
		d := weekStart.AddDate(0, 0, i)
		day := intakeDaySummary{
			Date:    DateOnly{d},
			Targets: targets,
		}
		if row, ok := rowByDate[d.Format("2006-01-02")]; ok {
			day.HasData = true
			day.Consumed = macroTotals{
				Calories: row.Calories,
				ProteinG: row.ProteinG,
				CarbsG:   row.CarbsG,
				FatG:     row.FatG,
			}
		}
		day.Remaining = remainingOf(targets, day.Consumed)
		result[i] = day
	}
	return result
}

// createIntakeItem inserts a new intake entry.
// POST /api/intake/items. Defaults date to today if omitted.
func (h *Handler) createIntakeItem(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createIntakeItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ItemName == "" {
		apiError(c, http.StatusBadRequest, "item_name is required")
		return
	}
	// Validate meal against the enum; prevents a cryptic 500 from the DB constraint.
	if !validMeals[body.Meal] {
		apiError(c, http.StatusBadRequest, "meal must be one of: breakfast, lunch, dinner, snack")
		return
	}
	if body.Calories < 0 {
		apiError(c, http.StatusBadRequest, "calories must not be negative")
		return
	}
	if body.Date == "" {
		body.Date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	item, err := queryOne[intakeItem](h.db, c,
		`INSERT INTO intake_items (user_id, date, item_name, meal, qty, uom, calories, protein_g, carbs_g, fat_g)
		 VALUES (@userID, @date, @itemName, @meal, @qty, @uom, @calories, @proteinG, @carbsG, @fatG)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "date": body.Date, "itemName": body.ItemName,
			"meal": body.Meal, "qty": body.Qty, "uom": body.Uom,
			"calories": body.Calories, "proteinG": body.ProteinG,
			"carbsG": body.CarbsG, "fatG": body.FatG,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create item")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// updateIntakeItem updates an existing intake entry.
// PUT /api/intake/items/:id. Uses COALESCE so omitted fields keep their current value.
func (h *Handler) updateIntakeItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Date     *string  `json:"date"`
		ItemName *string  `json:"item_name"`
		Meal     *string  `json:"meal"`
		Qty      *float64 `json:"qty"`
		Uom      *string  `json:"uom"`
		Calories *int     `json:"calories"`
		ProteinG *float64 `json:"protein_g"`
		CarbsG   *float64 `json:"carbs_g"`
		FatG     *float64 `json:"fat_g"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Meal != nil && !validMeals[*body.Meal] {
		apiError(c, http.StatusBadRequest, "meal must be one of: breakfast, lunch, dinner, snack")
		return
	}

	item, err := queryOne[intakeItem](h.db, c,
		`UPDATE intake_items SET
			date = COALESCE(@date, date),
			item_name = COALESCE(@itemName, item_name),
			meal = COALESCE(@meal, meal),
			qty = COALESCE(@qty, qty),
			uom = COALESCE(@uom, uom),
			calories = COALESCE(@calories, calories),
			protein_g = COALESCE(@proteinG, protein_g),
			carbs_g = COALESCE(@carbsG, carbs_g),
			fat_g = COALESCE(@fatG, fat_g),
			updated_at = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID,
			"date": body.Date, "itemName": body.ItemName, "meal": body.Meal,
			"qty": body.Qty, "uom": body.Uom, "calories": body.Calories,
			"proteinG": body.ProteinG, "carbsG": body.CarbsG, "fatG": body.FatG,
		})
	if err != nil {
		apiError(c, http.StatusNotFound, "item not found")
		return
	}

	c.JSON(http.StatusOK, item)
}

// deleteIntakeItem removes an intake entry. Returns 204 on success.
// DELETE /api/intake/items/:id.
func (h *Handler) deleteIntakeItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM intake_items WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "item not found")
		return
	}

	c.Status(http.StatusNoContent)
}
