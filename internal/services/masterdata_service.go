package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// RegistryClient fetches raw master-data payloads from the municipal
// registry. Payload shape varies between registry deployments, so the client
// hands back raw JSON and the resolver does the unwrapping.
type RegistryClient interface {
	FetchWards(ctx context.Context) (json.RawMessage, error)
	FetchDepartments(ctx context.Context) (json.RawMessage, error)
}

// MasterDataService resolves ward and department display names. Resolution
// is total: an unknown or unreachable id still yields a usable label.
type MasterDataService interface {
	ResolveWardName(ctx context.Context, id string) string
	ResolveDepartmentName(ctx context.Context, id string) string
	Refresh(ctx context.Context) error
}

// NameCache mirrors resolved display names. database.NameCache is the Redis
// implementation.
type NameCache interface {
	Get(ctx context.Context, kind, id string) (string, bool)
	Set(ctx context.Context, kind, id, name string)
}

type masterDataService struct {
	client RegistryClient
	cache  NameCache
}

func NewMasterDataService(client RegistryClient, cache NameCache) MasterDataService {
	return &masterDataService{
		client: client,
		cache:  cache,
	}
}

var wardIDKeys = []string{"wardId", "ward_id", "id", "number"}
var wardNameKeys = []string{"areaName", "area_name", "wardName", "name"}
var departmentIDKeys = []string{"departmentId", "department_id", "id", "code"}
var departmentNameKeys = []string{"departmentName", "department_name", "name"}

func (s *masterDataService) ResolveWardName(ctx context.Context, id string) string {
	if name, ok := s.cache.Get(ctx, "ward", id); ok {
		return name
	}
	if name, ok := s.lookup(ctx, s.client.FetchWards, id, wardIDKeys, wardNameKeys); ok {
		s.cache.Set(ctx, "ward", id, name)
		return name
	}
	return fmt.Sprintf("Ward %s", id)
}

func (s *masterDataService) ResolveDepartmentName(ctx context.Context, id string) string {
	if name, ok := s.cache.Get(ctx, "department", id); ok {
		return name
	}
	if name, ok := s.lookup(ctx, s.client.FetchDepartments, id, departmentIDKeys, departmentNameKeys); ok {
		s.cache.Set(ctx, "department", id, name)
		return name
	}
	return fmt.Sprintf("Department %s", id)
}

// Refresh pulls both registries and warms the name cache.
func (s *masterDataService) Refresh(ctx context.Context) error {
	raw, err := s.client.FetchWards(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch wards: %w", err)
	}
	for _, rec := range UnwrapRecords(raw) {
		id, okID := firstString(rec, wardIDKeys)
		name, okName := firstString(rec, wardNameKeys)
		if okID && okName {
			s.cache.Set(ctx, "ward", id, name)
		}
	}

	raw, err = s.client.FetchDepartments(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch departments: %w", err)
	}
	for _, rec := range UnwrapRecords(raw) {
		id, okID := firstString(rec, departmentIDKeys)
		name, okName := firstString(rec, departmentNameKeys)
		if okID && okName {
			s.cache.Set(ctx, "department", id, name)
		}
	}
	return nil
}

func (s *masterDataService) lookup(ctx context.Context, fetch func(context.Context) (json.RawMessage, error), id string, idKeys, nameKeys []string) (string, bool) {
	raw, err := fetch(ctx)
	if err != nil {
		return "", false
	}
	for _, rec := range UnwrapRecords(raw) {
		recID, ok := firstString(rec, idKeys)
		if !ok || recID != id {
			continue
		}
		if name, ok := firstString(rec, nameKeys); ok {
			return name, true
		}
	}
	return "", false
}

// UnwrapRecords digs the record list out of a registry payload. Known shapes:
// a bare array, {"data": [...]}, {"data": {"data": [...]}}, and
// {"payload": [...]}. Anything else yields no records.
func UnwrapRecords(raw json.RawMessage) []map[string]interface{} {
	if records, ok := asRecords(raw); ok {
		return records
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil
	}

	if inner, ok := envelope["data"]; ok {
		if records, ok := asRecords(inner); ok {
			return records
		}
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(inner, &nested); err == nil {
			if innermost, ok := nested["data"]; ok {
				if records, ok := asRecords(innermost); ok {
					return records
				}
			}
		}
	}

	if inner, ok := envelope["payload"]; ok {
		if records, ok := asRecords(inner); ok {
			return records
		}
	}

	return nil
}

func asRecords(raw json.RawMessage) ([]map[string]interface{}, bool) {
	var records []map[string]interface{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false
	}
	return records, true
}

// firstString tries each key in order and stringifies the first present
// value. Numeric ids arrive as JSON numbers; they are rendered without a
// fractional part.
func firstString(rec map[string]interface{}, keys []string) (string, bool) {
	for _, key := range keys {
		val, ok := rec[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case string:
			if v != "" {
				return v, true
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		case json.Number:
			return v.String(), true
		}
	}
	return "", false
}
