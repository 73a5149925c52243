package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"nadgodziny/internal/core"
	"nadgodziny/internal/log"
	"nadgodziny/internal/report"
	"nadgodziny/internal/store"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u := s.profiles.ActiveProfile()
	if u == nil {
		writeError(w, http.StatusNotFound, "brak profilu")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var u core.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "nieprawidłowe dane profilu")
		return
	}

	// Onboarding requires name, email and supervisor; the caller
	// validates, the record store does not.
	if err := u.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// The profile id never changes once assigned.
	if existing := s.profiles.ActiveProfile(); existing != nil {
		u.ID = existing.ID
	} else if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.IsActive = true

	s.profiles.SetActiveProfile(r.Context(), u)
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries := s.records.Entries()
	if u := s.profiles.ActiveProfile(); u != nil {
		entries = core.FilterByOwner(entries, *u)
	}

	q := r.URL.Query()
	if q.Get("year") != "" || q.Get("month") != "" {
		year, month := parseYearMonth(r)
		anchor := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
		entries = core.FilterByMonth(entries, anchor)
	}

	writeJSON(w, http.StatusOK, core.SortNewestFirst(entries))
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	var draft core.Overtime
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "nieprawidłowe dane wpisu")
		return
	}

	if draft.Hours < 0 {
		writeError(w, http.StatusUnprocessableEntity, core.ErrNegativeHours.Error())
		return
	}
	if draft.Coordinates != nil {
		if err := draft.Coordinates.Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	if draft.Date.IsZero() {
		draft.Date = time.Now()
	}

	entry, err := s.records.AddEntry(r.Context(), draft)
	if errors.Is(err, store.ErrNoActiveProfile) {
		writeError(w, http.StatusConflict, "najpierw utwórz profil")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Cannot add entry", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "nie można zapisać wpisu")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleDeleteEntries(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Positions []int `json:"positions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "nieprawidłowe pozycje")
		return
	}

	s.records.DeleteEntries(r.Context(), body.Positions)
	w.WriteHeader(http.StatusNoContent)
}

type dayStats struct {
	Day     time.Time       `json:"day"`
	Hours   float64         `json:"hours"`
	Entries []core.Overtime `json:"entries"`
}

type statsResponse struct {
	TodayHours float64    `json:"todayHours"`
	MonthHours float64    `json:"monthHours"`
	TotalHours float64    `json:"totalHours"`
	Days       []dayStats `json:"days"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	entries := s.records.Entries()
	if u := s.profiles.ActiveProfile(); u != nil {
		entries = core.FilterByOwner(entries, *u)
	}

	now := time.Now()
	groups := core.GroupByDay(entries)

	resp := statsResponse{
		TodayHours: core.SumHours(core.FilterByDay(entries, now)),
		MonthHours: core.SumHours(core.FilterByMonth(entries, now)),
		TotalHours: core.SumHours(entries),
		Days:       make([]dayStats, 0, len(groups)),
	}
	for _, day := range core.DaysNewestFirst(groups) {
		bucket := core.SortNewestFirst(groups[day])
		resp.Days = append(resp.Days, dayStats{
			Day:     day,
			Hours:   core.SumHours(bucket),
			Entries: bucket,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReportPreview(w http.ResponseWriter, r *http.Request) {
	u := s.profiles.ActiveProfile()
	if u == nil {
		writeError(w, http.StatusNotFound, "brak profilu")
		return
	}

	year, month := parseYearMonth(r)
	writeJSON(w, http.StatusOK, report.Monthly(*u, s.records.Entries(), year, time.Month(month)))
}

func (s *Server) handleReportSend(w http.ResponseWriter, r *http.Request) {
	u := s.profiles.ActiveProfile()
	if u == nil {
		writeError(w, http.StatusNotFound, "brak profilu")
		return
	}

	if s.reports == nil {
		// The user-visible alert for a device without mail set up.
		writeError(w, http.StatusServiceUnavailable,
			"Nie można wysłać maila. Sprawdź czy masz skonfigurowane konto email na urządzeniu.")
		return
	}

	year, month := parseYearMonth(r)
	if err := s.reports.PublishReportRequest(r.Context(), year, month); err != nil {
		s.logger.ErrorContext(r.Context(), "Cannot queue report",
			log.FieldYear, year, log.FieldMonth, month, log.FieldError, err)
		writeError(w, http.StatusServiceUnavailable,
			"Nie można wysłać maila. Sprawdź czy masz skonfigurowane konto email na urządzeniu.")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"queued": true,
		"year":   year,
		"month":  month,
	})
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	lat, okLat := parseFloatParam(r, "lat")
	lon, okLon := parseFloatParam(r, "lon")
	if !okLat || !okLon {
		writeError(w, http.StatusBadRequest, "wymagane parametry lat i lon")
		return
	}

	// A failed lookup is not an error to the user: the city field
	// simply stays as typed.
	city := ""
	if s.geocoder != nil {
		resolved, err := s.geocoder.Resolve(r.Context(), core.Coordinates{Latitude: lat, Longitude: lon})
		if err != nil {
			s.logger.DebugContext(r.Context(), "Locality lookup failed",
				log.FieldError, err, log.FieldOperation, log.OpLookup)
		} else {
			city = resolved
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"city": city})
}
