package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/cadence/internal/analytics"
	"github.com/julianstephens/cadence/internal/constants"
	apperrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/tracker"
	"github.com/julianstephens/cadence/internal/utils"
)

type habitSummary struct {
	models.Habit
	Streak           int      `json:"streak"`
	Rate             *float64 `json:"rate"`
	InsufficientData bool     `json:"insufficient_data,omitempty"`
	WindowDays       int      `json:"window_days"`
	CompletedTotal   int      `json:"completed_total"`
}

type rateResponse struct {
	Rate             *float64 `json:"rate"`
	InsufficientData bool     `json:"insufficient_data,omitempty"`
	WindowDays       int      `json:"window_days"`
}

type logResponse struct {
	PeriodKey  string    `json:"period_key"`
	Completed  bool      `json:"completed"`
	RecordedAt time.Time `json:"recorded_at"`
}

type badgeResponse struct {
	ID          string    `json:"id"`
	Definition  string    `json:"definition"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Points      int       `json:"points"`
	HabitID     string    `json:"habit_id,omitempty"`
	AwardedAt   time.Time `json:"awarded_at"`
}

type recordRequest struct {
	Date      string `json:"date"`
	Completed *bool  `json:"completed"`
}

func owner(c *gin.Context) string {
	return c.GetString(ownerKey)
}

func ratePointer(r analytics.Rate) (*float64, bool) {
	if r.Insufficient() {
		return nil, true
	}
	v := float64(r)
	return &v, false
}

func badgesJSON(badges []models.UserBadge) []badgeResponse {
	out := make([]badgeResponse, 0, len(badges))
	for _, b := range badges {
		out = append(out, badgeResponse{
			ID:          b.InstanceID(),
			Definition:  b.Definition.ID,
			Name:        b.Definition.Name,
			Description: b.Definition.Description,
			Icon:        b.Definition.Icon,
			Points:      b.Definition.Points,
			HabitID:     b.HabitID,
			AwardedAt:   b.AwardedAt,
		})
	}
	return out
}

// windowDays reads ?window_days=, defaulting to the configured window
func (s *Server) windowDays(c *gin.Context) (int, bool) {
	raw := c.Query("window_days")
	if raw == "" {
		return s.tracker.WindowDays(), true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		badRequest(c, "window_days must be a positive integer")
		return 0, false
	}
	return n, true
}

func (s *Server) periodKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		freq := models.Frequency(c.Query("frequency"))
		if !freq.Valid() {
			badRequest(c, "frequency must be daily, weekly or monthly")
			return
		}

		cal := s.tracker.Calendar
		date := s.tracker.Clock.Now()
		if raw := c.Query("date"); raw != "" {
			d, err := utils.ParseDateInLocation(raw, cal.Location())
			if err != nil {
				badRequest(c, err.Error())
				return
			}
			date = d
		}

		weekdays, err := utils.ParseWeekdays(c.Query("weekdays"))
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		key := cal.Key(freq, date, weekdays)
		c.JSON(http.StatusOK, gin.H{"period_key": cal.Format(key)})
	}
}

func (s *Server) listHabits() gin.HandlerFunc {
	return func(c *gin.Context) {
		window, ok := s.windowDays(c)
		if !ok {
			return
		}

		stats, err := s.tracker.Summaries(c.Request.Context(), owner(c), window)
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]habitSummary, 0, len(stats))
		for _, st := range stats {
			rate, insufficient := ratePointer(st.Rate)
			out = append(out, habitSummary{
				Habit:            st.Habit,
				Streak:           st.Streak,
				Rate:             rate,
				InsufficientData: insufficient,
				WindowDays:       st.WindowDays,
				CompletedTotal:   st.Completed,
			})
		}
		c.JSON(http.StatusOK, gin.H{"habits": out})
	}
}

func (s *Server) createHabit() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in tracker.HabitInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err.Error())
			return
		}

		habit, outcome, err := s.tracker.CreateHabit(owner(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"habit": habit, "awarded": badgesJSON(outcome.Awarded)})
	}
}

func (s *Server) getHabit() gin.HandlerFunc {
	return func(c *gin.Context) {
		window, ok := s.windowDays(c)
		if !ok {
			return
		}
		st, err := s.tracker.Engine.Stats(owner(c), c.Param("id"), window)
		if err != nil {
			respondError(c, err)
			return
		}
		rate, insufficient := ratePointer(st.Rate)
		c.JSON(http.StatusOK, habitSummary{
			Habit:            st.Habit,
			Streak:           st.Streak,
			Rate:             rate,
			InsufficientData: insufficient,
			WindowDays:       st.WindowDays,
			CompletedTotal:   st.Completed,
		})
	}
}

func (s *Server) deleteHabit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.tracker.DeleteHabit(owner(c), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) listLogs() gin.HandlerFunc {
	return func(c *gin.Context) {
		habitID := c.Param("id")
		if _, err := s.tracker.Store.GetHabit(owner(c), habitID); err != nil {
			respondError(c, apperrors.Store(err))
			return
		}
		logs, err := s.tracker.Store.ListLogs(owner(c), habitID)
		if err != nil {
			respondError(c, apperrors.Store(err))
			return
		}

		out := make([]logResponse, 0, len(logs))
		for _, l := range logs {
			out = append(out, logResponse{
				PeriodKey:  l.PeriodKey.Format(constants.DateFormat),
				Completed:  l.Completed,
				RecordedAt: l.RecordedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"logs": out})
	}
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req recordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		cal := s.tracker.Calendar
		date := s.tracker.Clock.Now()
		if req.Date != "" {
			d, err := utils.ParseDateInLocation(req.Date, cal.Location())
			if err != nil {
				badRequest(c, err.Error())
				return
			}
			date = d
		}
		completed := true
		if req.Completed != nil {
			completed = *req.Completed
		}

		out, err := s.tracker.Record(owner(c), c.Param("id"), date, completed)
		if err != nil {
			respondError(c, err)
			return
		}

		resp := gin.H{
			"ok":               true,
			"period_key":       cal.Format(out.PeriodKey),
			"completed":        out.Completed,
			"became_completed": out.BecameCompleted,
			"first_completion": out.FirstCompletion,
			"awarded":          badgesJSON(out.Rewards.Awarded),
		}
		if out.BecameCompleted {
			resp["streak"] = out.Streak
			resp["points"] = out.Rewards.Points
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (s *Server) streak() gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := s.tracker.Engine.CurrentStreak(owner(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"streak": n})
	}
}

func (s *Server) completionRate() gin.HandlerFunc {
	return func(c *gin.Context) {
		window, ok := s.windowDays(c)
		if !ok {
			return
		}
		r, err := s.tracker.Engine.CompletionRate(owner(c), c.Param("id"), window)
		if err != nil {
			respondError(c, err)
			return
		}
		rate, insufficient := ratePointer(r)
		c.JSON(http.StatusOK, rateResponse{Rate: rate, InsufficientData: insufficient, WindowDays: window})
	}
}

func (s *Server) badges() gin.HandlerFunc {
	return func(c *gin.Context) {
		badges, err := s.tracker.Awarder.Badges(owner(c))
		if err != nil {
			respondError(c, apperrors.Store(err))
			return
		}
		points, err := s.tracker.Awarder.Points(owner(c))
		if err != nil {
			respondError(c, apperrors.Store(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"points": points, "badges": badgesJSON(badges)})
	}
}
