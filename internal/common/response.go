package common

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the body of every API response. Exactly one of Data and Error is
// non-null.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *string     `json:"error"`
}

func Success(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

func Failure(code string) Envelope {
	return Envelope{Success: false, Error: &code}
}

// RespondWithData writes a success envelope.
func RespondWithData(w http.ResponseWriter, code int, data interface{}) {
	RespondWithJSON(w, code, Success(data))
}

// RespondWithError writes the failure envelope for err. Internal failures are
// logged here and never exposed beyond their stable code.
func RespondWithError(w http.ResponseWriter, err error) {
	status := HTTPStatusFromError(err)
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: %v", err)
	}
	RespondWithJSON(w, status, Failure(ErrorCode(err)))
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"data":null,"error":"INTERNAL_SERVER_ERROR"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
