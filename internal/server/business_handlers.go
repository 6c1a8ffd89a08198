package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	stderrors "franchisehub-api/internal/common/errors"
	"franchisehub-api/internal/services/registration"
)

// handleRegisterBusiness accepts a new listing as multipart form data (the
// financial document rides along as a file part) or plain JSON.
func (s *Server) handleRegisterBusiness(w http.ResponseWriter, r *http.Request) {
	input, err := s.decodeRegistration(r)
	if err != nil {
		writeError(w, err)
		return
	}

	output, err := s.registration.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, output)
}

func (s *Server) decodeRegistration(r *http.Request) (*registration.Input, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/json") {
		// isAgreed defaults to true when omitted; decoding only overwrites
		// it if the client sent the field.
		input := registration.Input{IsAgreed: true}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			return nil, stderrors.NewValidationError("malformed request body")
		}
		return &input, nil
	}

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		return nil, stderrors.NewValidationError("malformed multipart form")
	}

	input := registration.Input{
		CompanyName:          r.FormValue("companyName"),
		Industry:             r.FormValue("industry"),
		YearEstablished:      r.FormValue("yearEstablished"),
		Headquarters:         r.FormValue("headquarters"),
		Website:              r.FormValue("website"),
		FranchiseName:        r.FormValue("franchiseName"),
		FranchiseDescription: r.FormValue("franchiseDescription"),
		InvestmentRange:      r.FormValue("investmentRange"),
		FranchiseFee:         r.FormValue("franchiseFee"),
		RoyaltyFee:           r.FormValue("royaltyFee"),
		Email:                r.FormValue("email"),
		IsAgreed:             r.FormValue("isAgreed") != "false",
	}

	file, header, err := r.FormFile("financialDocuments")
	if err == nil {
		input.Document = &registration.Document{
			Filename: header.Filename,
			Content:  file,
		}
	} else if err != http.ErrMissingFile {
		return nil, stderrors.NewUploadRejectedError("could not read uploaded document")
	}

	return &input, nil
}

// handleListBusinesses returns the full directory of registered businesses.
func (s *Server) handleListBusinesses(w http.ResponseWriter, r *http.Request) {
	businesses, err := s.registration.ListBusinesses(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, businesses)
}

// handleSearchBusinesses queries the directory index. Requires admin.
func (s *Server) handleSearchBusinesses(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		writeError(w, stderrors.NewSearchUnavailableError(errors.New("search is disabled")))
		return
	}

	q := r.URL.Query().Get("q")
	industry := r.URL.Query().Get("industry")

	hits, err := s.search.Search(r.Context(), q, industry)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": hits})
}
