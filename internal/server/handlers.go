package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/dotdraw/pkg/buildinfo"
	"github.com/matzehuels/dotdraw/pkg/drawio"
	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/graph"
	"github.com/matzehuels/dotdraw/pkg/observability"
	"github.com/matzehuels/dotdraw/pkg/pipeline"
)

// Response headers set by /v1/convert.
const (
	HeaderCache = "X-Dotdraw-Cache" // "hit" or "miss"
	HeaderNodes = "X-Dotdraw-Nodes" // node count, fresh conversions only
)

var contentTypes = map[string]string{
	pipeline.FormatDrawio: "application/xml; charset=utf-8",
	pipeline.FormatJSON:   "application/json",
	pipeline.FormatGraph:  "application/json",
	pipeline.FormatDOT:    "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:    "image/svg+xml",
}

// convertRequest is the JSON form of a conversion request.
type convertRequest struct {
	Name    string           `json:"name"`
	Source  string           `json:"source"`
	Options pipeline.Options `json:"options"`
	Refresh bool             `json:"refresh"`
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Stage   string      `json:"stage,omitempty"`
	Line    int         `json:"line,omitempty"`
	Column  int         `json:"column,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"formats": pipeline.Formats,
		"default": pipeline.DefaultFormat,
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	req, err := decodeConvert(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidateSource(req.Source); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := req.Options
	s.cfg.Settings.Apply(&opts, time.Now())
	opts.Agent = buildinfo.Agent()
	opts.Logger = s.cfg.Logger

	res, err := s.cfg.Runner.Execute(r.Context(), pipeline.Request{
		Name:    req.Name,
		Source:  req.Source,
		Options: opts,
		Refresh: req.Refresh,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", contentTypes[res.Format])
	if res.CacheHit {
		h.Set(HeaderCache, "hit")
	} else {
		h.Set(HeaderCache, "miss")
		h.Set(HeaderNodes, strconv.Itoa(res.Stats.NodeCount))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(res.Output)
}

// inspectResponse summarizes a draw.io document.
type inspectResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Agent      string    `json:"agent,omitempty"`
	Modified   time.Time `json:"modified,omitzero"`
	PageWidth  int       `json:"page_width"`
	PageHeight int       `json:"page_height"`
	Shapes     int       `json:"shapes"`
	Connectors int       `json:"connectors"`
	Dangling   []string  `json:"dangling,omitempty"` // connectors whose ends are not shapes
}

// handleInspect decodes a draw.io document, e.g. one returned by
// /v1/convert, and reports its contents.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	doc, err := drawio.Decode(r.Body)
	if err != nil {
		s.writeError(w, r, bodyError(err, "decode document"))
		return
	}

	resp := inspectResponse{
		ID:         doc.ID,
		Name:       doc.Name,
		Agent:      doc.Agent,
		Modified:   doc.Modified,
		PageWidth:  doc.PageWidth,
		PageHeight: doc.PageHeight,
		Shapes:     len(doc.Shapes),
		Connectors: len(doc.Connectors),
	}
	for _, c := range doc.Connectors {
		_, src := doc.Shape(c.Source)
		_, dst := doc.Shape(c.Target)
		if !src || !dst {
			resp.Dangling = append(resp.Dangling, c.ID)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeConvert reads a conversion request from a JSON or plain-text body.
func decodeConvert(r *http.Request) (convertRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req convertRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return req, bodyError(err, "decode request")
		}
		return req, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return convertRequest{}, bodyError(err, "read body")
	}
	req := convertRequest{Source: string(body)}
	if err := queryOptions(r.URL.Query(), &req); err != nil {
		return req, err
	}
	return req, nil
}

func bodyError(err error, msg string) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return err
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", msg)
}

func queryOptions(q url.Values, req *convertRequest) error {
	req.Name = q.Get("name")
	o := &req.Options
	o.Format = q.Get("format")
	o.Layout.Direction = graph.Direction(q.Get("direction"))

	floats := []struct {
		key string
		dst *float64
	}{
		{"layer_spacing", &o.Layout.LayerSpacing},
		{"node_spacing", &o.Layout.NodeSpacing},
		{"node_width", &o.Layout.NodeWidth},
		{"node_height", &o.Layout.NodeHeight},
	}
	for _, f := range floats {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a number", f.key, v)
		}
		*f.dst = n
	}
	if v := q.Get("iterations"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "iterations: %q is not an integer", v)
		}
		o.Layout.Iterations = n
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"explicit_nodes", &o.ExplicitNodes},
		{"no_redefinition", &o.NoRedefinition},
		{"detailed", &o.Detailed},
		{"refresh", &req.Refresh},
	}
	for _, b := range bools {
		v := q.Get(b.key)
		if v == "" {
			continue
		}
		set, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a boolean", b.key, v)
		}
		*b.dst = set
	}
	return nil
}

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeSyntax, errors.ErrCodeSemantic, errors.ErrCodeLayout:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	body := errorBody{Code: errors.GetCode(err), Message: errors.UserMessage(err)}

	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		body.Code = errors.ErrCodeInvalidInput
		body.Message = "request body too large (max " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes)"
	}
	if body.Code == "" {
		body.Code = errors.ErrCodeInternal
	}
	var stage *errors.StageError
	if stderrors.As(err, &stage) {
		body.Stage = string(stage.Stage)
	}
	var syn *errors.SyntaxError
	if stderrors.As(err, &syn) {
		body.Line, body.Column = syn.Line, syn.Column
	}

	if status >= http.StatusInternalServerError {
		route := chi.RouteContext(r.Context()).RoutePattern()
		observability.HTTP().OnError(r.Context(), r.Method, route, err)
		s.cfg.Logger.Error("conversion failed", "route", route, "err", err)
	}
	writeJSON(w, status, map[string]errorBody{"error": body})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
