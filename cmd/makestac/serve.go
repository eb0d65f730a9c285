// Copyright 2025, EDITO Infra Contributors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/EDITO-Infra/makestac/model"
	"github.com/EDITO-Infra/makestac/stac"
	"github.com/EDITO-Infra/makestac/util"
)

func getPortStr() string {
	if port, ok := os.LookupEnv("PORT"); ok {
		return ":" + port
	}
	return ":8080"
}

type validateResponse struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

func createRouter(logCtx util.LogContext) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte("OK"))
	})
	router.HandleFunc("/validate", newValidateHandler(logCtx)).Methods(http.MethodPost)
	return router
}

// newValidateHandler validates a posted STAC item and reports every
// violation. Validation is stateless; nothing is stored.
func newValidateHandler(logCtx util.LogContext) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		body, err := io.ReadAll(request.Body)
		if err != nil {
			http.Error(writer, "could not read request body", http.StatusBadRequest)
			return
		}
		var item model.StacItem
		if err = json.Unmarshal(body, &item); err != nil {
			badRequest := util.Error{
				LogMsg:     "Request body is not a STAC item JSON document: " + err.Error(),
				SimpleMsg:  "request body is not a STAC item JSON document",
				Response:   string(body),
				URL:        request.URL.Path,
				HTTPStatus: http.StatusBadRequest,
			}
			badRequest.Log(logCtx, "")
			http.Error(writer, badRequest.SimpleMsg, http.StatusBadRequest)
			return
		}

		util.LogAudit(logCtx, util.LogAuditInput{Actor: request.RemoteAddr, Action: "validate", Actee: item.ID, Message: "Validating posted STAC item", Severity: util.INFO})

		response := validateResponse{Valid: true}
		if err = stac.ValidateItem(&item); err != nil {
			var validationErr *stac.StacValidationError
			if errors.As(err, &validationErr) {
				response = validateResponse{Valid: false, Violations: validationErr.Violations}
			} else {
				http.Error(writer, err.Error(), http.StatusInternalServerError)
				return
			}
		}

		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(response)
	}
}

func serveAction(*cli.Context) {
	logCtx := &(util.BasicLogContext{})
	portStr := getPortStr()
	util.LogInfo(logCtx, "Starting makestac validation server on "+portStr)
	launchServerFunc(portStr, createRouter(logCtx))
}

var launchServerFunc = launchServer

func launchServer(portStr string, router *mux.Router) {
	server := http.Server{
		Addr:    portStr,
		Handler: router,
	}

	log.Fatal(server.ListenAndServe())
}
