// Copyright (c) 2023 BVK Chaitanya

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/bvk/oco/api"
	"github.com/bvk/oco/exchange"
	"github.com/bvk/oco/exchange/paper"
	"github.com/bvk/oco/gobs"
	"github.com/bvk/oco/job"
	"github.com/bvk/oco/ticker"
)

// httpPostJSONHandler adapts a request handler function into a http handler
// that decodes the JSON request body and encodes the JSON response.
func httpPostJSONHandler[T1, T2 any](fun func(context.Context, *T1) (*T2, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST requests are supported", http.StatusMethodNotAllowed)
			return
		}
		if ct := r.Header.Get("content-type"); !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			http.Error(w, "content-type must be application/json", http.StatusUnsupportedMediaType)
			return
		}
		req := new(T1)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, fmt.Sprintf("could not decode request: %v", err), http.StatusBadRequest)
			return
		}
		resp, err := fun(r.Context(), req)
		if err != nil {
			slog.Warn("api request has failed", "path", r.URL.Path, "err", err)
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
		w.Header().Set("content-type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("could not encode api response (ignored)", "path", r.URL.Path, "err", err)
		}
	})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, os.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, os.ErrNotExist), exchange.IsConfigError(err):
		return http.StatusNotFound
	case errors.Is(err, os.ErrExist):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) doLimit(ctx context.Context, req *api.LimitRequest) (*api.LimitResponse, error) {
	j, err := req.Job()
	if err != nil {
		return nil, err
	}
	// Exchange must be known before the job is saved.
	if _, err := s.registry.Resolve(j.LimitOrder.TickTrigger.Exchange); err != nil {
		return nil, err
	}
	uid, err := s.dispatcher.SubmitNew(ctx, j)
	if err != nil {
		return nil, err
	}
	return &api.LimitResponse{UID: uid}, nil
}

func (s *Server) describe(ctx context.Context, jd *gobs.JobData) *api.JobListResponseItem {
	item := &api.JobListResponseItem{
		UID:        jd.ID,
		Type:       jd.Typename,
		State:      string(jd.State),
		Error:      jd.Error,
		CreateTime: jd.CreateTime,
	}
	if _, j, err := s.dispatcher.Get(ctx, jd.ID); err == nil {
		item.Description = j.String()
	}
	return item
}

func (s *Server) doJobList(ctx context.Context, req *api.JobListRequest) (*api.JobListResponse, error) {
	jds, err := s.dispatcher.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := new(api.JobListResponse)
	for _, jd := range jds {
		if !req.All && job.IsDone(jd.State) {
			continue
		}
		resp.Jobs = append(resp.Jobs, s.describe(ctx, jd))
	}
	return resp, nil
}

func (s *Server) doJobGet(ctx context.Context, req *api.JobGetRequest) (*api.JobGetResponse, error) {
	if err := req.Check(); err != nil {
		return nil, err
	}
	jd, _, err := s.dispatcher.Get(ctx, req.UID)
	if err != nil {
		return nil, err
	}
	return &api.JobGetResponse{Job: s.describe(ctx, jd)}, nil
}

func (s *Server) doJobCancel(ctx context.Context, req *api.JobCancelRequest) (*api.JobCancelResponse, error) {
	if err := req.Check(); err != nil {
		return nil, err
	}
	state, err := s.dispatcher.Cancel(ctx, req.UID)
	if err != nil {
		return nil, err
	}
	return &api.JobCancelResponse{FinalState: string(state)}, nil
}

func (s *Server) doExchangeGetOrder(ctx context.Context, req *api.ExchangeGetOrderRequest) (*api.ExchangeGetOrderResponse, error) {
	if err := req.Check(); err != nil {
		return nil, err
	}
	spec, _ := ticker.Parse(req.Ticker)
	gateway, err := s.registry.Resolve(spec.Exchange)
	if err != nil {
		return nil, err
	}
	order, err := gateway.GetOrder(ctx, spec.Pair(), req.OrderID)
	if err != nil {
		return &api.ExchangeGetOrderResponse{Error: err.Error()}, nil
	}
	resp := &api.ExchangeGetOrderResponse{
		Order: &api.Order{
			OrderID:       order.ServerOrderID,
			ClientOrderID: order.ClientOrderID,
			Pair:          order.Pair,
			Side:          string(order.Side),
			CreateTime:    order.CreateTime.Time,
			FinishTime:    order.FinishTime.Time,
			Price:         order.Price,
			Size:          order.Size,
			Fee:           order.Fee,
			FilledSize:    order.FilledSize,
			FilledPrice:   order.FilledPrice,
			Status:        order.Status,
			Done:          order.Done,
			DoneReason:    order.DoneReason,
		},
	}
	return resp, nil
}

func (s *Server) getPaper(name string) (*paper.Exchange, error) {
	ex, ok := s.paperMap[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("no paper exchange with name %q: %w", name, os.ErrNotExist)
	}
	return ex, nil
}

func (s *Server) doPaperSetPrice(ctx context.Context, req *api.PaperSetPriceRequest) (*api.PaperSetPriceResponse, error) {
	if err := req.Check(); err != nil {
		return nil, err
	}
	spec, _ := ticker.Parse(req.Ticker)
	ex, err := s.getPaper(spec.Exchange)
	if err != nil {
		return nil, err
	}
	if err := ex.SetPrice(spec.Pair(), req.Price); err != nil {
		return nil, err
	}
	return &api.PaperSetPriceResponse{}, nil
}

func (s *Server) doPaperCancel(ctx context.Context, req *api.PaperCancelRequest) (*api.PaperCancelResponse, error) {
	if err := req.Check(); err != nil {
		return nil, err
	}
	ex, err := s.getPaper(req.Exchange)
	if err != nil {
		return nil, err
	}
	if err := ex.Cancel(req.OrderID); err != nil {
		return nil, err
	}
	return &api.PaperCancelResponse{}, nil
}
