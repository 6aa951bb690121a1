package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"contest_arena/internal/common"
)

const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return common.Errorf("invalid request payload: %v: %w", err, common.ErrBadRequest)
	}
	return nil
}
