package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// FakeService is an in-process Argus service covering the endpoints the REST
// transport speaks: registration, signing, signed-URL storage, confirm,
// status, datasets, item listing and annotation import. State is held in
// memory and guarded by a mutex so concurrent per-item uploads are safe.
type FakeService struct {
	// APIKey is the key the service accepts. Empty disables auth checks.
	APIKey string

	// PendingConfirms is how many confirm calls per upload answer 202 before
	// the upload is accepted.
	PendingConfirms int

	// ProcessingPolls is how many status calls per upload report processing
	// before the upload turns processed.
	ProcessingPolls int

	// BlockedNames lists item names the register endpoint refuses.
	BlockedNames []string

	// FailTransferNames lists item names whose signed-URL PUT answers 500.
	FailTransferNames []string

	// FailProcessingNames lists item names that end up failed after polling.
	FailProcessingNames []string

	// URL is the base address of the running server.
	URL string

	mu        sync.Mutex
	uploads   map[uuid.UUID]*fakeUpload
	datasets  map[int64]*fakeDataset
	nextID    int64
	transfers []TransferRecord
	imports   map[uuid.UUID][]json.RawMessage
	itemIDs   map[int64][]uuid.UUID
}

// fakeUpload is per-upload service state.
type fakeUpload struct {
	name        string
	confirms    int
	polls       int
	confirmed   bool
	transferred bool
}

// fakeDataset is per-dataset service state.
type fakeDataset struct {
	id       int64
	name     string
	archived bool
}

// TransferRecord captures one signed-URL PUT for assertions.
type TransferRecord struct {
	UploadID    uuid.UUID
	ContentType string
	Size        int64
}

// NewServer starts a fake service on an httptest server, shut down when the
// test finishes.
func NewServer(t *testing.T) *FakeService {
	t.Helper()

	s := &FakeService{
		uploads:  make(map[uuid.UUID]*fakeUpload),
		datasets: make(map[int64]*fakeDataset),
		imports:  make(map[uuid.UUID][]json.RawMessage),
		itemIDs:  make(map[int64][]uuid.UUID),
	}
	srv := httptest.NewServer(s.router())
	t.Cleanup(srv.Close)
	s.URL = srv.URL
	return s
}

// Transfers returns a copy of the recorded signed-URL PUTs.
func (s *FakeService) Transfers() []TransferRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TransferRecord, len(s.transfers))
	copy(out, s.transfers)
	return out
}

// Imports returns the annotation payloads imported for an item.
func (s *FakeService) Imports(itemID uuid.UUID) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imports[itemID]
}

// SeedItems registers item IDs under a dataset for the listing endpoint.
func (s *FakeService) SeedItems(datasetID int64, ids []uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itemIDs[datasetID] = append(s.itemIDs[datasetID], ids...)
}

// Dataset returns the stored dataset state, or nil when unknown.
func (s *FakeService) Dataset(id int64) (name string, archived, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, found := s.datasets[id]
	if !found {
		return "", false, false
	}
	return ds.name, ds.archived, true
}

func (s *FakeService) router() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Post("/datasets", s.handleCreateDataset)
		r.Get("/datasets/{datasetID}", s.handleGetDataset)
		r.Put("/datasets/{datasetID}/archive", s.handleArchiveDataset)
		r.Route("/v2/teams/{team}/items", func(r chi.Router) {
			r.Post("/register_upload", s.handleRegister)
			r.Get("/ids", s.handleListItemIDs)
			r.Get("/uploads/{uploadID}/sign", s.handleSign)
			r.Post("/uploads/{uploadID}/confirm", s.handleConfirm)
			r.Get("/uploads/{uploadID}", s.handleStatus)
			r.Post("/{itemID}/import", s.handleImport)
		})
	})
	// Signed URLs are pre-authorized and bypass the API key check.
	r.Put("/storage/{uploadID}", s.handleStoragePut)
	return r
}

func (s *FakeService) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.APIKey != "" && r.Header.Get("Authorization") != "ApiKey "+s.APIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *FakeService) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DatasetSlug string `json:"dataset_slug"`
		Items       []struct {
			Name  string `json:"name"`
			Path  string `json:"path"`
			Slots []struct {
				SlotName string `json:"slot_name"`
				FileName string `json:"file_name"`
			} `json:"slots"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DatasetSlug == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "malformed registration"})
		return
	}

	type slotResp struct {
		SlotName string    `json:"slot_name"`
		UploadID uuid.UUID `json:"upload_id"`
	}
	type itemResp struct {
		Name  string     `json:"name"`
		Path  string     `json:"path"`
		Slots []slotResp `json:"slots"`
	}
	var resp struct {
		Items        []itemResp `json:"items"`
		BlockedItems []itemResp `json:"blocked_items"`
	}
	resp.Items = []itemResp{}
	resp.BlockedItems = []itemResp{}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range req.Items {
		entry := itemResp{Name: item.Name, Path: item.Path}
		if contains(s.BlockedNames, item.Name) {
			resp.BlockedItems = append(resp.BlockedItems, entry)
			continue
		}
		for _, slot := range item.Slots {
			id := uuid.New()
			s.uploads[id] = &fakeUpload{name: item.Name}
			entry.Slots = append(entry.Slots, slotResp{SlotName: slot.SlotName, UploadID: id})
		}
		resp.Items = append(resp.Items, entry)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *FakeService) handleSign(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uploadFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"upload_url": s.URL + "/storage/" + id.String(),
	})
}

func (s *FakeService) handleStoragePut(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "uploadID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown upload"})
		return
	}

	s.mu.Lock()
	up, ok := s.uploads[id]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown upload"})
		return
	}
	failed := contains(s.FailTransferNames, up.name)
	s.mu.Unlock()

	size, _ := io.Copy(io.Discard, r.Body)
	if failed {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage write failed"})
		return
	}

	s.mu.Lock()
	up.transferred = true
	s.transfers = append(s.transfers, TransferRecord{
		UploadID:    id,
		ContentType: r.Header.Get("Content-Type"),
		Size:        size,
	})
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *FakeService) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uploadFromPath(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	up := s.uploads[id]
	if !up.transferred {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no bytes received"})
		return
	}
	up.confirms++
	if up.confirms <= s.PendingConfirms {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
		return
	}
	up.confirmed = true
	writeJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

func (s *FakeService) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uploadFromPath(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	up := s.uploads[id]
	switch {
	case !up.confirmed:
		writeJSON(w, http.StatusOK, map[string]string{"status": "uploaded"})
	case contains(s.FailProcessingNames, up.name):
		writeJSON(w, http.StatusOK, map[string]string{"status": "failed"})
	default:
		up.polls++
		if up.polls <= s.ProcessingPolls {
			writeJSON(w, http.StatusOK, map[string]string{"status": "processing"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
	}
}

func (s *FakeService) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "name is required"})
		return
	}

	s.mu.Lock()
	s.nextID++
	ds := &fakeDataset{id: s.nextID, name: req.Name}
	s.datasets[ds.id] = ds
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, datasetJSON(ds))
}

func (s *FakeService) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.datasetFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, datasetJSON(ds))
}

func (s *FakeService) handleArchiveDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.datasetFromPath(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	ds.archived = true
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, datasetJSON(ds))
}

func (s *FakeService) handleListItemIDs(w http.ResponseWriter, r *http.Request) {
	datasetID, err := strconv.ParseInt(r.URL.Query().Get("dataset_ids"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "dataset_ids is required"})
		return
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("page[offset]"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page[size]"))
	if size <= 0 {
		size = 100
	}

	s.mu.Lock()
	ids := s.itemIDs[datasetID]
	s.mu.Unlock()

	page := []uuid.UUID{}
	if offset < len(ids) {
		end := offset + size
		if end > len(ids) {
			end = len(ids)
		}
		page = ids[offset:end]
	}
	writeJSON(w, http.StatusOK, map[string][]uuid.UUID{"item_ids": page})
}

func (s *FakeService) handleImport(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown item"})
		return
	}
	var req struct {
		Annotations json.RawMessage `json:"annotations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "malformed payload"})
		return
	}

	s.mu.Lock()
	s.imports[itemID] = append(s.imports[itemID], req.Annotations)
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *FakeService) uploadFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "uploadID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown upload"})
		return uuid.Nil, false
	}
	s.mu.Lock()
	_, ok := s.uploads[id]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown upload"})
		return uuid.Nil, false
	}
	return id, true
}

func (s *FakeService) datasetFromPath(w http.ResponseWriter, r *http.Request) (*fakeDataset, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "datasetID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown dataset"})
		return nil, false
	}
	s.mu.Lock()
	ds, ok := s.datasets[id]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown dataset"})
		return nil, false
	}
	return ds, true
}

func datasetJSON(ds *fakeDataset) map[string]any {
	slug := strings.ToLower(strings.ReplaceAll(ds.name, " ", "-"))
	return map[string]any{
		"id":       ds.id,
		"name":     ds.name,
		"slug":     slug,
		"archived": ds.archived,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
