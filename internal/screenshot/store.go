package screenshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// DefaultListLimit and MaxListLimit bound one page of list results.
	DefaultListLimit = 20
	MaxListLimit     = 100

	// indexScanCap bounds how many index rows a tenant-scoped listing will
	// scan. Mirrors the historical 1000-entry cap on tenant index lists.
	indexScanCap = 1000

	// kvScanPageSize is the page size used for internal prefix scans
	// (index membership, expiry sweep).
	kvScanPageSize = 200
)

// Store orchestrates screenshot persistence: content-addressed dedup, path
// construction, retention, blob and metadata writes, and maintenance of the
// four secondary indices (tenant, project, session, date).
//
// Indices are best-effort secondary structures. A screenshot is always
// retrievable by id once its metadata write succeeds; a failed index write
// is logged and counted but never fails the store operation.
type Store struct {
	objects   ObjectStore
	kv        KVStore
	retention *RetentionPolicy
	signer    *URLSigner
	logger    Logger
	metrics   Metrics
	clock     Clock
	idgen     IDGenerator
}

// NewStore creates a Store with explicit dependencies. There is no global
// registry: callers inject the bindings they want.
func NewStore(objects ObjectStore, kv KVStore, retention *RetentionPolicy, signer *URLSigner, logger Logger, metrics Metrics, clock Clock, idgen IDGenerator) *Store {
	return &Store{
		objects:   objects,
		kv:        kv,
		retention: retention,
		signer:    signer,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		idgen:     idgen,
	}
}

// Store persists an uploaded screenshot. Identical binary payloads collapse
// to a single stored object: a second upload of the same bytes returns the
// first upload's record unchanged, regardless of differing metadata.
//
// Note the dedup check-then-write is not atomic. Two concurrent uploads of
// the same bytes can both miss the check and both write; the second blob
// write is byte-identical so no data is lost, but the two metadata records
// will diverge in analytics and index membership.
func (s *Store) Store(ctx context.Context, req StoreRequest) (*Response, error) {
	// Validate before any I/O.
	domain, err := DomainInfoFromURL(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	data, err := DecodeImageData(req.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid image data: %w", err)
	}

	fileID := GenerateFileID(data)
	now := s.clock.Now()
	cfg := s.buildConfig(req, domain, now)

	// Dedup: identical content already stored wins, first writer's
	// metadata and all.
	existing, err := s.getMetadata(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("checking for existing screenshot: %w", err)
	}
	if existing != nil {
		s.metrics.IncDedupHit()
		s.logger.Debug("screenshot deduplicated", "id", fileID)
		return s.response(existing), nil
	}

	path := BuildPath(cfg, fileID, TypeFull, FormatPNG)

	// Blob first, metadata second. If the metadata write fails the worst
	// outcome is an orphaned blob, which expires with its tenant's
	// retention window anyway.
	info := ObjectInfo{
		ContentType: "image/png",
		Metadata: map[string]string{
			"url":     req.URL,
			"title":   req.Title,
			"tenant":  string(cfg.Tenant.Type) + ":" + cfg.Tenant.Identifier,
			"project": cfg.Project.Name,
			"session": cfg.Session.ID,
		},
	}
	if err := s.objects.Put(ctx, path, bytes.NewReader(data), int64(len(data)), info); err != nil {
		return nil, fmt.Errorf("storing screenshot blob: %w", err)
	}

	meta := &Metadata{
		ID:      fileID,
		Path:    path,
		Tenant:  cfg.Tenant,
		Project: cfg.Project,
		Domain:  cfg.Domain,
		Session: cfg.Session,
		File: FileInfo{
			OriginalName: fmt.Sprintf("screenshot-%s.png", fileID),
			Size:         int64(len(data)),
			MimeType:     "image/png",
			Formats:      FileFormats{Full: path},
		},
		Page:       PageInfo{Title: req.Title, URL: req.URL},
		CapturedAt: now,
		ExpiresAt:  s.retention.ExpirationDate(now, cfg.Tenant.Type, 0),
		Permissions: Permissions{
			Public:       cfg.Tenant.Type == TenantPublic,
			RequiresAuth: cfg.Tenant.Type != TenantPublic,
		},
	}

	if err := s.putMetadata(ctx, meta, now); err != nil {
		return nil, fmt.Errorf("storing screenshot metadata: %w", err)
	}

	s.updateIndices(ctx, meta, now)
	s.metrics.IncStored(string(cfg.Tenant.Type))
	s.logger.Info("screenshot stored",
		"id", meta.ID,
		"tenant", string(meta.Tenant.Type)+":"+meta.Tenant.Identifier,
		"path", meta.Path,
		"size", meta.File.Size)

	return s.response(meta), nil
}

// Get retrieves a screenshot by id and records the access. Returns
// (nil, nil) when the id is unknown or the record has expired.
func (s *Store) Get(ctx context.Context, id string) (*Response, error) {
	meta, err := s.getMetadata(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching screenshot: %w", err)
	}
	if meta == nil {
		return nil, nil
	}

	now := s.clock.Now()
	if !meta.ExpiresAt.After(now) {
		// Backends without native TTL can hand back expired records.
		return nil, nil
	}

	meta.Analytics.Views++
	meta.Analytics.LastAccessed = &now

	// Re-persist with the TTL derived from the unchanged expiresAt; the
	// analytics write must not extend the record's life.
	if err := s.putMetadata(ctx, meta, now); err != nil {
		return nil, fmt.Errorf("recording screenshot access: %w", err)
	}

	s.metrics.IncViews()
	return s.response(meta), nil
}

// List returns one page of screenshots. With TenantType and TenantID set it
// reads the tenant index, newest first. Otherwise it scans the metadata
// prefix with the store's native cursor, applying the domain, project and
// session filters after the fact.
func (s *Store) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	if req.TenantType != "" && req.TenantID != "" {
		return s.listByTenant(ctx, req.TenantType, req.TenantID, limit)
	}
	return s.listByScan(ctx, req, limit)
}

// listByTenant lists via the per-tenant index rows, most recent first.
func (s *Store) listByTenant(ctx context.Context, typ TenantType, identifier string, limit int) (*ListResult, error) {
	prefix := TenantIndexKey(typ, identifier) + ":"
	entries, err := s.scanIndex(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("reading tenant index: %w", err)
	}

	result := &ListResult{Screenshots: []*Metadata{}}
	for _, e := range entries {
		if len(result.Screenshots) == limit {
			result.HasMore = true
			break
		}
		meta, err := s.getMetadata(ctx, e.id)
		if err != nil {
			return nil, fmt.Errorf("fetching screenshot %s: %w", e.id, err)
		}
		if meta == nil {
			// Stale index row; the metadata record is authoritative.
			continue
		}
		result.Screenshots = append(result.Screenshots, meta)
	}
	return result, nil
}

// listByScan pages through the metadata prefix and filters after fetching.
func (s *Store) listByScan(ctx context.Context, req ListRequest, limit int) (*ListResult, error) {
	page, err := s.kv.List(ctx, "screenshot:", req.Cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("scanning screenshots: %w", err)
	}

	result := &ListResult{
		Screenshots: []*Metadata{},
		Cursor:      page.Cursor,
		HasMore:     !page.Complete,
	}
	for _, key := range page.Keys {
		raw, err := s.kv.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", key, err)
		}
		if raw == nil {
			continue
		}
		var meta Metadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			s.logger.Warn("skipping unreadable screenshot record", "key", key, "error", err)
			continue
		}
		if !matchesFilters(&meta, req) {
			continue
		}
		result.Screenshots = append(result.Screenshots, &meta)
	}
	return result, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func matchesFilters(meta *Metadata, req ListRequest) bool {
	if req.Domain != "" && !containsFold(meta.Domain.Hostname, req.Domain) {
		return false
	}
	if req.Project != "" && meta.Project.Name != req.Project {
		return false
	}
	if req.Session != "" && meta.Session.ID != req.Session {
		return false
	}
	return true
}

// Delete removes a screenshot's blob, metadata record and index rows.
// Returns false without side effects when the id is unknown.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	meta, err := s.getMetadata(ctx, id)
	if err != nil {
		return false, fmt.Errorf("fetching screenshot: %w", err)
	}
	if meta == nil {
		return false, nil
	}
	if err := s.remove(ctx, meta); err != nil {
		return false, err
	}
	s.metrics.IncDeleted()
	s.logger.Info("screenshot deleted", "id", id)
	return true, nil
}

// SweepExpired removes every screenshot whose expiry has passed. Backends
// with native TTL drop the metadata on their own; the sweep reclaims blobs
// and records on backends that do not, and is what an external scheduler
// would invoke. Returns the number of screenshots removed.
func (s *Store) SweepExpired(ctx context.Context) (int, error) {
	now := s.clock.Now()
	removed := 0
	cursor := ""
	for {
		page, err := s.kv.List(ctx, "screenshot:", cursor, kvScanPageSize)
		if err != nil {
			return removed, fmt.Errorf("scanning screenshots: %w", err)
		}
		for _, key := range page.Keys {
			raw, err := s.kv.Get(ctx, key)
			if err != nil {
				return removed, fmt.Errorf("fetching %s: %w", key, err)
			}
			if raw == nil {
				continue
			}
			var meta Metadata
			if err := json.Unmarshal(raw, &meta); err != nil {
				s.logger.Warn("skipping unreadable screenshot record", "key", key, "error", err)
				continue
			}
			if meta.ExpiresAt.After(now) {
				continue
			}
			if err := s.remove(ctx, &meta); err != nil {
				return removed, err
			}
			removed++
		}
		if page.Complete {
			break
		}
		cursor = page.Cursor
	}
	if removed > 0 {
		s.logger.Info("expired screenshots swept", "removed", removed)
	}
	return removed, nil
}

// SignedURL returns a time-limited URL for a stored path. A non-positive
// ttl uses the default of one hour.
func (s *Store) SignedURL(path string, ttl time.Duration) string {
	return s.signer.SignedURL(path, ttl, s.clock.Now())
}

// buildConfig fills in the defaults for an upload: anonymous public tenant,
// the default project, and a generated session when none is supplied.
func (s *Store) buildConfig(req StoreRequest, domain DomainInfo, now time.Time) StorageConfig {
	tenant := TenantInfo{Type: TenantPublic, Identifier: "anonymous", Plan: "free"}
	if req.Tenant != nil {
		tenant = *req.Tenant
	}

	project := ProjectInfo{Name: DefaultProjectName, Tags: req.Tags}
	if req.Project != "" {
		project.Name = req.Project
	}

	session := SessionInfo{}
	if req.Session != nil {
		session = *req.Session
	}
	if session.ID == "" {
		session.ID = fmt.Sprintf("%d-%s", now.UnixMilli(), s.idgen.New())
	}
	if session.Type == "" {
		session.Type = SessionDefault
	}
	if session.StartTime.IsZero() {
		session.StartTime = now
	}

	return StorageConfig{
		Tenant:     tenant,
		Project:    project,
		Domain:     domain,
		Session:    session,
		CapturedAt: now,
	}
}

// indexKeys returns the four secondary index keys for a record, keyed by
// dimension name.
func (s *Store) indexKeys(meta *Metadata) map[string]string {
	return map[string]string{
		"tenant":  TenantIndexKey(meta.Tenant.Type, meta.Tenant.Identifier),
		"project": ProjectIndexKey(meta.Tenant.Identifier, meta.Project.Name),
		"session": SessionIndexKey(meta.Session.ID),
		"date":    DateIndexKey(meta.CapturedAt),
	}
}

// updateIndices writes one membership row per index. Each row is a single
// key, so there is no read-modify-write race between concurrent uploads.
// Failures are logged and counted; the metadata record stays authoritative
// and a repair sweep can rebuild indices from it.
func (s *Store) updateIndices(ctx context.Context, meta *Metadata, now time.Time) {
	ttl := meta.ExpiresAt.Sub(now)
	value := []byte(meta.CapturedAt.UTC().Format(time.RFC3339Nano))
	for name, key := range s.indexKeys(meta) {
		if err := s.kv.Put(ctx, IndexEntryKey(key, meta.ID), value, ttl); err != nil {
			s.metrics.IncIndexWriteFailure(name)
			s.logger.Error("index write failed", "index", name, "id", meta.ID, "error", err)
		}
	}
}

// remove deletes a record's blob, metadata and all four index rows. Index
// row cleanup is symmetric with creation.
func (s *Store) remove(ctx context.Context, meta *Metadata) error {
	if err := s.objects.Delete(ctx, meta.Path); err != nil {
		return fmt.Errorf("deleting screenshot blob: %w", err)
	}
	if err := s.kv.Delete(ctx, MetadataKey(meta.ID)); err != nil {
		return fmt.Errorf("deleting screenshot metadata: %w", err)
	}
	for name, key := range s.indexKeys(meta) {
		if err := s.kv.Delete(ctx, IndexEntryKey(key, meta.ID)); err != nil {
			s.logger.Error("index cleanup failed", "index", name, "id", meta.ID, "error", err)
		}
	}
	return nil
}

func (s *Store) getMetadata(ctx context.Context, id string) (*Metadata, error) {
	raw, err := s.kv.Get(ctx, MetadataKey(id))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decoding metadata for %s: %w", id, err)
	}
	return &meta, nil
}

// putMetadata persists a record with a TTL derived from its fixed expiry.
func (s *Store) putMetadata(ctx context.Context, meta *Metadata, now time.Time) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	return s.kv.Put(ctx, MetadataKey(meta.ID), raw, meta.ExpiresAt.Sub(now))
}

func (s *Store) response(meta *Metadata) *Response {
	return &Response{
		ID:       meta.ID,
		Path:     meta.Path,
		URL:      s.signer.PublicURL(meta.Path),
		Expires:  meta.ExpiresAt,
		Metadata: meta,
	}
}

// indexEntry is one membership row read back from an index prefix scan.
type indexEntry struct {
	id         string
	capturedAt string
}

// scanIndex reads up to indexScanCap membership rows under prefix and
// returns them newest first.
func (s *Store) scanIndex(ctx context.Context, prefix string) ([]indexEntry, error) {
	var entries []indexEntry
	cursor := ""
	for len(entries) < indexScanCap {
		page, err := s.kv.List(ctx, prefix, cursor, kvScanPageSize)
		if err != nil {
			return nil, err
		}
		for _, key := range page.Keys {
			raw, err := s.kv.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if raw == nil {
				continue
			}
			entries = append(entries, indexEntry{
				id:         key[len(prefix):],
				capturedAt: string(raw),
			})
		}
		if page.Complete {
			break
		}
		cursor = page.Cursor
	}
	// RFC 3339 timestamps sort lexicographically; newest first, id as
	// tie-break for a stable order.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].capturedAt != entries[j].capturedAt {
			return entries[i].capturedAt > entries[j].capturedAt
		}
		return entries[i].id < entries[j].id
	})
	return entries, nil
}
