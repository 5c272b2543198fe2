package families

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/miguelfer1410/cdp-sub001/authentication"
	"github.com/miguelfer1410/cdp-sub001/shared"
	"github.com/miguelfer1410/cdp-sub001/store"
)

var (
	ErrBadRouting = errors.New("inconsistent mapping between route and handler (programmer error)")
)

type LinkTransport struct {
	CallerId       string `json:"-"`
	Id             string `json:"id,omitempty"`
	MemberId       string `json:"memberId"`
	LinkedMemberId string `json:"linkedMemberId"`
	Relationship   string `json:"relationship"`
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Add(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeAddEndpoint(h.Service),
		decodeLinkTransport,
		shared.EncodeResponse201,
		opts...,
	)
}

func (h *HandlerFactory) Remove(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeRemoveEndpoint(h.Service),
		decodeLinkIdRequest,
		shared.EncodeResponse204,
		opts...,
	)
}

func (h *HandlerFactory) List(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeListEndpoint(h.Service),
		decodeMemberIdRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) AliasGroups(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeAliasGroupsEndpoint(h.Service),
		ignorePayload,
		shared.EncodeResponse200,
		opts...,
	)
}

func makeAddEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(LinkTransport)
		link, err := svc.AddLink(ctx, req)
		if err != nil {
			return nil, err
		}
		return LinkTransport{
			Id:             link.LinkId,
			MemberId:       link.MemberId,
			LinkedMemberId: link.LinkedMemberId,
			Relationship:   link.Relationship,
		}, nil
	}
}

func makeRemoveEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(LinkTransport)
		if err := svc.RemoveLink(ctx, req.Id); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func makeListEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(LinkTransport)
		return svc.ListLinks(ctx, req.CallerId, req.MemberId)
	}
}

func makeAliasGroupsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return svc.ListAliasGroups(ctx)
	}
}

func decodeLinkTransport(_ context.Context, r *http.Request) (interface{}, error) {
	var request LinkTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func decodeLinkIdRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	linkId, ok := vars["linkId"]
	if !ok {
		return nil, ErrBadRouting
	}
	return LinkTransport{Id: linkId}, nil
}

func decodeMemberIdRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	memberId, ok := vars["memberId"]
	if !ok {
		return nil, ErrBadRouting
	}
	return LinkTransport{
		CallerId: authentication.CallerIdFromContext(ctx),
		MemberId: memberId,
	}, nil
}

func ignorePayload(_ context.Context, r *http.Request) (interface{}, error) {
	return nil, nil
}

// encode errors from business-logic
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch errors.Cause(err) {
	case store.ErrInvalidRelationship, store.ErrSelfLink, ErrMemberMissing:
		w.WriteHeader(http.StatusBadRequest)
	case ErrUnauthorized:
		w.WriteHeader(http.StatusForbidden)
	case store.ErrLinkAlreadyExists:
		w.WriteHeader(http.StatusConflict)
	case store.ErrLinkNotFound, store.ErrMemberNotFound:
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
