// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/pkg/remote"
	"github.com/walteh/gesto/pkg/session"
)

// 📋 Requests is the controller behind the active request list
type Requests struct {
	api     remote.Requests
	session *session.Context
}

func NewRequests(api remote.Requests, sc *session.Context) *Requests {
	return &Requests{api: api, session: sc}
}

// List fetches the active requests. On failure the list is empty and the
// error is returned for display.
func (r *Requests) List(ctx context.Context) ([]remote.ActiveRequest, error) {
	reqs, err := r.api.ActiveRequests(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("listing active requests")
		return []remote.ActiveRequest{}, errors.Errorf("listing active requests: %w", err)
	}
	if reqs == nil {
		reqs = []remote.ActiveRequest{}
	}
	return reqs, nil
}

// 👉 Select makes the request's area the current one
func (r *Requests) Select(ctx context.Context, req remote.ActiveRequest) error {
	if err := r.session.Select(ctx, req.Area(), req.AreaName); err != nil {
		return errors.Errorf("selecting request %s: %w", req.ID, err)
	}
	return nil
}

// SelectID looks id up in a fresh list and selects it. id matches either the
// request id or the area id.
func (r *Requests) SelectID(ctx context.Context, id string) (remote.ActiveRequest, error) {
	reqs, err := r.List(ctx)
	if err != nil {
		return remote.ActiveRequest{}, err
	}
	for _, req := range reqs {
		if string(req.ID) == id || req.Area() == id {
			return req, r.Select(ctx, req)
		}
	}
	return remote.ActiveRequest{}, errors.Errorf("no active request %q", id)
}

// Current returns the selected area, empty when none is selected
func (r *Requests) Current(ctx context.Context) (session.RequestContext, error) {
	return r.session.Load(ctx)
}
