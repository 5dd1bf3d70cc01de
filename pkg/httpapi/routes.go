package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dataflow-studio/engine/pkg/engine"
	"github.com/dataflow-studio/engine/pkg/node"
	"github.com/dataflow-studio/engine/pkg/storage"
	"github.com/dataflow-studio/engine/pkg/workflow"
)

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	Success  bool   `json:"success"`
	UploadID string `json:"upload_id,omitempty"`
	Rows     int    `json:"rows,omitempty"`
	Columns  int    `json:"columns,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RunWorkflowRequest is the body of POST /api/workflows/run.
type RunWorkflowRequest struct {
	Workflow workflow.Document `json:"workflow"`
}

// RunWorkflowResponse reports how a workflow run went: an overall status
// (success, partial, or error), each node's output, the download URL of a
// written Output file (if any; when several Output nodes wrote files,
// which one is reported is not defined), and accumulated node errors.
type RunWorkflowResponse struct {
	Status         string                                 `json:"status"`
	NodeOutputs    map[string]workflow.ExternalNodeResult `json:"node_outputs"`
	FinalOutputURL *string                                `json:"final_output_url,omitempty"`
	Errors         []string                               `json:"errors,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.httpConfig.MaxRequestBodySize)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, UploadResponse{Error: "no file provided"})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		s.writeJSON(w, http.StatusBadRequest, UploadResponse{Error: "file must be a .csv"})
		return
	}

	tbl, err := storage.DecodeCSV(file, true, ',')
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, UploadResponse{Error: fmt.Sprintf("invalid CSV: %v", err)})
		return
	}

	id, err := s.store.WriteCSV(tbl)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, UploadResponse{Error: fmt.Sprintf("upload failed: %v", err)})
		return
	}

	s.logger.WithField("upload_id", id).Info("file uploaded")
	s.writeJSON(w, http.StatusOK, UploadResponse{
		Success:  true,
		UploadID: id,
		Rows:     tbl.NumRows(),
		Columns:  tbl.NumCols(),
	})
}

func (s *Server) handleRunWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.httpConfig.MaxRequestBodySize)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, RunWorkflowResponse{Status: "error", Errors: []string{err.Error()}})
		return
	}
	if fieldErrs, err := validateWorkflowRequest(body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, RunWorkflowResponse{Status: "error", Errors: []string{err.Error()}})
		return
	} else if len(fieldErrs) > 0 {
		s.writeJSON(w, http.StatusBadRequest, RunWorkflowResponse{Status: "error", Errors: fieldErrs})
		return
	}

	var req RunWorkflowRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, RunWorkflowResponse{Status: "error", Errors: []string{err.Error()}})
		return
	}

	s.logger.WithField("node_count", len(req.Workflow.Nodes)).WithField("edge_count", len(req.Workflow.Edges)).Info("running workflow")

	eng := engine.New(s.registry, s.store, s.engineConfig)
	eng.RegisterObserver(telemetryObserver(s.telemetryProvider))

	ctx, cancel := contextWithTimeout(r.Context(), s.engineConfig.MaxExecutionTime)
	defer cancel()

	results, err := eng.Execute(ctx, req.Workflow)
	if err != nil {
		s.writeJSON(w, http.StatusOK, RunWorkflowResponse{
			Status:      "error",
			NodeOutputs: map[string]workflow.ExternalNodeResult{},
			Errors:      []string{err.Error()},
		})
		return
	}

	nodeOutputs := make(map[string]workflow.ExternalNodeResult, len(results))
	var errs []string
	var finalOutputURL *string
	anySuccess := false
	for id, result := range results {
		nodeOutputs[id] = result.External(id)
		if result.Success {
			anySuccess = true
			if fileID, ok := result.Metadata["file_id"].(string); ok {
				url := "/api/download/" + fileID
				finalOutputURL = &url
			}
		} else {
			errs = append(errs, fmt.Sprintf("%s: %s", id, result.Error))
		}
	}

	status := "success"
	if len(errs) > 0 {
		status = "error"
		if anySuccess {
			status = "partial"
		}
	}

	s.writeJSON(w, http.StatusOK, RunWorkflowResponse{
		Status:         status,
		NodeOutputs:    nodeOutputs,
		FinalOutputURL: finalOutputURL,
		Errors:         errs,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/download/")
	if id == "" {
		http.Error(w, "missing file id", http.StatusBadRequest)
		return
	}

	tbl, err := s.store.ReadCSV(id, node.CSVReadOptions{Header: true, Separator: ','})
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".csv"))
	if err := storage.EncodeCSV(w, tbl); err != nil {
		s.logger.WithError(err).Error("failed to stream download")
	}
}

func (s *Server) handleNodeCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	eng := engine.New(s.registry, s.store, s.engineConfig)
	s.writeJSON(w, http.StatusOK, eng.NodeCatalog())
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}
