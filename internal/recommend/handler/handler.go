// Package handler exposes the ranking engine and its collaborators over HTTP.
package handler

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"recommend-service/internal/directory"
	"recommend-service/internal/fileio"
	"recommend-service/internal/insights"
	"recommend-service/internal/metrics"
	"recommend-service/internal/recommend/model"
	"recommend-service/internal/recommend/service"
	"recommend-service/internal/session"
)

// Directory is the part of *directory.Store the handlers use.
type Directory interface {
	List(ctx context.Context) ([]model.Supplier, error)
	Get(ctx context.Context, id string) (model.Supplier, error)
	Upsert(ctx context.Context, suppliers []model.Supplier) error
	Delete(ctx context.Context, id string) error
	Subscribe() (<-chan directory.Event, func())

	PutProfile(ctx context.Context, p directory.Profile) error
	CreateReview(ctx context.Context, r directory.Review) (directory.Review, error)
	Reviews(ctx context.Context, supplierID string) ([]directory.Review, error)
	ReviewByOrder(ctx context.Context, orderID string) (directory.Review, error)
}

type Deps struct {
	Dir          Directory
	Metrics      *metrics.Metrics
	Logger       zerolog.Logger
	TopN         int
	MaxUpload    int64
	AllowOrigins []string
}

// query is one ranking request after parsing.
type query struct {
	Location  *model.Location `json:"location,omitempty"`
	Commodity string          `json:"commodity,omitempty"`
	Sort      string          `json:"sort,omitempty"`
	Limit     int             `json:"limit,omitempty"`
}

func (d Deps) rank(source string, cands []model.Supplier, q query) recommendResponse {
	limit := q.Limit
	if limit <= 0 {
		limit = d.TopN
	}
	commodity := strings.TrimSpace(q.Commodity)
	if commodity == "" {
		commodity = model.CommodityAll
	}
	mode := model.ParseSortMode(q.Sort)

	res := service.Recommend(service.Request{
		Suppliers: cands,
		Location:  q.Location,
		Commodity: commodity,
		Sort:      mode,
		Limit:     limit,
	})
	d.Metrics.ObservePass(source, string(mode), res.Matched, len(res.Top))

	return recommendResponse{
		Recommendations: toItems(res.Top),
		Commodities:     service.Commodities(cands),
		Total:           res.Matched,
		Empty:           len(res.Top) == 0,
		Commodity:       commodity,
		Sort:            mode,
		Location:        q.Location,
	}
}

// locationParam reads lat/lon. Both absent means no location.
func locationParam(get func(string) string) (*model.Location, error) {
	latS, lonS := strings.TrimSpace(get("lat")), strings.TrimSpace(get("lon"))
	if latS == "" && lonS == "" {
		return nil, nil
	}
	lat, ok1 := parseFloat(latS)
	lon, ok2 := parseFloat(lonS)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: lat and lon must both be numbers", errBadRequest)
	}
	// NaN/Inf не кодируются в JSON ответа
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return nil, fmt.Errorf("%w: lat and lon must be finite", errBadRequest)
	}
	return &model.Location{Latitude: lat, Longitude: lon, Name: get("location_name")}, nil
}

func queryParams(r *http.Request, topN int) (query, error) {
	v := r.URL.Query()
	loc, err := locationParam(v.Get)
	if err != nil {
		return query{}, err
	}
	q := query{
		Location:  loc,
		Commodity: v.Get("commodity"),
		Sort:      v.Get("sort"),
		Limit:     atoi(v.Get("limit"), topN),
	}
	if q.Location == nil {
		q.Location = session.From(r.Context()).Location()
	}
	return q, nil
}

type recommendRequest struct {
	Suppliers []model.Supplier `json:"suppliers"`
	query
}

// Recommend ranks the suppliers posted in the body.
func Recommend(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, d.Logger)
		var req recommendRequest
		if err := decodeJSON(r, &req); err != nil {
			fail(w, log, err)
			return
		}
		resp := d.rank(metrics.SourceInline, req.Suppliers, req.query)
		if err := writeJSON(w, http.StatusOK, resp); err != nil {
			log.Error().Err(err).Msg("write json")
		}
	}
}

// Upload ranks suppliers from an uploaded spreadsheet.
func Upload(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := reqLogger(r, d.Logger)

		recs, name, err := readSheet(r, d.MaxUpload)
		if err != nil {
			fail(w, log, err)
			return
		}
		cands, _ := directory.FromRecords(recs, nil)
		loc, err := locationParam(r.FormValue)
		if err != nil {
			fail(w, log, err)
			return
		}
		resp := d.rank(metrics.SourceUpload, cands, query{
			Location:  loc,
			Commodity: r.FormValue("commodity"),
			Sort:      r.FormValue("sort"),
			Limit:     atoi(r.FormValue("limit"), d.TopN),
		})
		if err := writeJSON(w, http.StatusOK, resp); err != nil {
			log.Error().Err(err).Msg("write json")
			return
		}
		log.Info().
			Str("file", name).
			Int("suppliers", len(cands)).
			Int("matched", resp.Total).
			Dur("elapsed", time.Since(start)).
			Msg("upload ranked")
	}
}

// readSheet parses the multipart "file" part into spreadsheet records.
func readSheet(r *http.Request, maxUpload int64) ([]fileio.Record, string, error) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		if statusFor(err) == http.StatusRequestEntityTooLarge {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: bad multipart form: %v", errBadRequest, err)
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: missing file: %v", errBadRequest, err)
	}
	defer f.Close()
	if !fileio.Supported(hdr.Filename) {
		return nil, hdr.Filename, fmt.Errorf("%w: %q (want .xlsx, .xls or .csv)", fileio.ErrUnsupported, hdr.Filename)
	}

	recs, err := fileio.ReadAnyMaps(f, hdr.Filename, atoi(r.FormValue("header_row"), 1))
	if err != nil {
		if statusFor(err) != http.StatusBadRequest {
			err = fmt.Errorf("%w: read %s: %v", errBadRequest, hdr.Filename, err)
		}
		return nil, hdr.Filename, err
	}
	return recs, hdr.Filename, nil
}

// Recommendations ranks the directory's in-stock suppliers.
func Recommendations(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, d.Logger)
		q, err := queryParams(r, d.TopN)
		if err != nil {
			fail(w, log, err)
			return
		}
		cands, err := d.Dir.List(r.Context())
		if err != nil {
			fail(w, log, err)
			return
		}
		if err := writeJSON(w, http.StatusOK, d.rank(metrics.SourceDirectory, cands, q)); err != nil {
			log.Error().Err(err).Msg("write json")
		}
	}
}

// Commodities lists the commodity filter options of the directory.
func Commodities(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, d.Logger)
		cands, err := d.Dir.List(r.Context())
		if err != nil {
			fail(w, log, err)
			return
		}
		_ = writeJSON(w, http.StatusOK, map[string][]string{"commodities": service.Commodities(cands)})
	}
}

func ListSuppliers(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, d.Logger)
		cands, err := d.Dir.List(r.Context())
		if err != nil {
			fail(w, log, err)
			return
		}
		_ = writeJSON(w, http.StatusOK, cands)
	}
}

// PutSuppliers upserts a JSON list of suppliers.
func PutSuppliers(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, d.Logger)
		var list []model.Supplier
		if err := decodeJSON(r, &list); err != nil {
			fail(w, log, err)
			return
		}
		if err := d.Dir.Upsert(r.Context(), list); err != nil {
			fail(w, log, err)
			return
		}
		log.Info().Int("suppliers", len(list)).Msg("suppliers upserted")
		_ = writeJSON(w, http.StatusOK, map[string]int{"upserted": len(list)})
	}
}

type importResponse struct {
	File     string   `json:"file"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	IDs      []string `json:"ids"`
}

// ImportSuppliers loads a spreadsheet into the directory.
func ImportSuppliers(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := reqLogger(r, d.Logger)

		recs, name, err := readSheet(r, d.MaxUpload)
		if err != nil {
			fail(w, log, err)
			return
		}
		list, skipped := directory.FromRecords(recs, nil)
		if err := d.Dir.Upsert(r.Context(), list); err != nil {
			fail(w, log, err)
			return
		}
		d.Metrics.AddImportedRows("imported", len(list))
		d.Metrics.AddImportedRows("skipped", skipped)

		resp := importResponse{File: name, Imported: len(list), Skipped: skipped, IDs: make([]string, 0, len(list))}
		for _, s := range list {
			resp.IDs = append(resp.IDs, s.ID)
		}
		_ = writeJSON(w, http.StatusOK, resp)
		log.Info().
			Str("file", name).
			Int("imported", len(list)).
			Int("skipped", skipped).
			Dur("elapsed", time.Since(start)).
			Msg("suppliers imported")
	}
}

// GetSupplier returns one in-stock supplier.
func GetSupplier(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, d.Logger)
		sp, err := d.Dir.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			fail(w, log, err)
			return
		}
		_ = writeJSON(w, http.StatusOK, sp)
	}
}

// DeleteSupplier marks a supplier out of stock.
func DeleteSupplier(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, d.Logger)
		id := chi.URLParam(r, "id")
		if err := d.Dir.Delete(r.Context(), id); err != nil {
			fail(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Session returns the caller's resolved session.
func Session(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, session.From(r.Context()))
}

// Insights computes vendor dashboard figures from posted orders.
func Insights(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, d.Logger)
		var in insights.Input
		if err := decodeJSON(r, &in); err != nil {
			fail(w, log, err)
			return
		}
		_ = writeJSON(w, http.StatusOK, insights.Compute(in, time.Now()))
	}
}
