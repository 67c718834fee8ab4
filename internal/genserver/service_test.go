package genserver

import (
	"context"
	"errors"
	"math"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mineshaft/internal/config"
	"github.com/cory-johannsen/mineshaft/internal/storage/postgres"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/level"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/mineshaft"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/structure"
)

type memStore struct {
	mu      sync.Mutex
	records map[[3]int64]postgres.StructureRecord
	fail    error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[[3]int64]postgres.StructureRecord)}
}

func (m *memStore) Save(_ context.Context, seed int64, variant string, s *structure.Start) (postgres.StructureRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return postgres.StructureRecord{}, m.fail
	}
	key := [3]int64{seed, int64(s.ChunkX), int64(s.ChunkZ)}
	if _, ok := m.records[key]; ok {
		return postgres.StructureRecord{}, postgres.ErrStructureExists
	}
	data, err := s.Encode()
	if err != nil {
		return postgres.StructureRecord{}, err
	}
	rec := postgres.StructureRecord{
		ID: uuid.New(), WorldSeed: seed, Structure: s.ID, Variant: variant,
		ChunkX: s.ChunkX, ChunkZ: s.ChunkZ, PieceCount: len(s.Pieces),
		Bounds: s.BoundingBox(), Record: data, CreatedAt: time.Now(),
	}
	m.records[key] = rec
	return rec, nil
}

func (m *memStore) FindByChunk(_ context.Context, seed int64, _ string, cx, cz int) (postgres.StructureRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return postgres.StructureRecord{}, m.fail
	}
	rec, ok := m.records[[3]int64{seed, int64(cx), int64(cz)}]
	if !ok {
		return postgres.StructureRecord{}, postgres.ErrStructureNotFound
	}
	return rec, nil
}

func testGenerator() config.GeneratorConfig {
	return config.GeneratorConfig{
		Type:           "normal",
		SeaLevel:       63,
		MinY:           -64,
		Height:         384,
		BlockingBiomes: []string{"deep_dark"},
	}
}

// testGRPCServer starts an in-process gRPC server and returns a connected client.
func testGRPCServer(t *testing.T, store Store) (*GeneratorClient, *grpc.ClientConn) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	svc := NewService(mineshaft.DefaultCatalog(), testGenerator(), config.GenServerConfig{MaxChunkRadius: 1000}, store, logger)
	srv, _ := NewGRPCServer(svc, logger)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewGeneratorClient(conn), conn
}

func TestGenerate_MatchesDirectGeneration(t *testing.T) {
	client, _ := testGRPCServer(t, nil)
	ctx := context.Background()

	resp, err := client.GenerateStart(ctx, Request{Seed: -4962768465676381896, ChunkX: 3, ChunkZ: -5})
	require.NoError(t, err)

	gen := testGenerator()
	lvl := level.NewMemory(level.NewNoiseTerrain(level.DefaultNoiseOptions(-4962768465676381896)), gen.MinY, gen.Height)
	kind, err := mineshaft.DefaultCatalog().ByName("normal")
	require.NoError(t, err)
	want := mineshaft.Generate(lvl, mineshaft.Options{Seed: -4962768465676381896, Type: kind, SeaLevel: gen.SeaLevel}, 3, -5)

	assert.Equal(t, mineshaft.StructureID, resp.Structure)
	assert.Equal(t, "normal", resp.Type)
	assert.Equal(t, 3, resp.ChunkX)
	assert.Equal(t, -5, resp.ChunkZ)
	assert.Empty(t, resp.ID)
	assert.False(t, resp.Cached)
	assert.Nil(t, resp.Placement)
	assert.Empty(t, resp.Record)
	assert.Equal(t, want.BoundingBox(), resp.Bounds)
	require.Len(t, resp.Pieces, len(want.Pieces))
	for i, p := range want.Pieces {
		assert.Equal(t, p.ID(), resp.Pieces[i].ID)
		assert.Equal(t, p.GenDepth(), resp.Pieces[i].Depth)
		assert.Equal(t, p.Orientation(), resp.Pieces[i].Orientation)
		assert.Equal(t, p.BoundingBox(), resp.Pieces[i].Bounds)
	}
	assert.Equal(t, mineshaft.RoomID, resp.Pieces[0].ID)
}

func TestGenerate_RecordAndPlacement(t *testing.T) {
	client, _ := testGRPCServer(t, nil)
	resp, err := client.GenerateStart(context.Background(), Request{Seed: 99, Type: "mesa", Place: true, IncludeRecord: true})
	require.NoError(t, err)

	assert.Equal(t, "mesa", resp.Type)
	require.NotNil(t, resp.Placement)
	assert.Positive(t, resp.Placement.Chunks)

	start, err := structure.DecodeStart(resp.Record, mineshaft.NewRegistry(mineshaft.DefaultCatalog()))
	require.NoError(t, err)
	assert.Len(t, start.Pieces, len(resp.Pieces))
	assert.Equal(t, resp.Bounds, start.BoundingBox())
}

func TestGenerate_PersistsAndReuses(t *testing.T) {
	store := newMemStore()
	client, _ := testGRPCServer(t, store)
	ctx := context.Background()
	req := Request{Seed: 7, ChunkX: 1, ChunkZ: 1, Persist: true, IncludeRecord: true}

	first, err := client.GenerateStart(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.Cached)

	second, err := client.GenerateStart(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Pieces, second.Pieces)
	assert.Equal(t, first.Record, second.Record)
}

func TestGenerate_PersistRejectsOtherStoredType(t *testing.T) {
	store := newMemStore()
	client, _ := testGRPCServer(t, store)
	ctx := context.Background()

	_, err := client.GenerateStart(ctx, Request{Seed: 11, ChunkX: 2, ChunkZ: 2, Type: "normal", Persist: true})
	require.NoError(t, err)

	_, err = client.GenerateStart(ctx, Request{Seed: 11, ChunkX: 2, ChunkZ: 2, Type: "mesa", Persist: true})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	resp, err := client.GenerateStart(ctx, Request{Seed: 11, ChunkX: 2, ChunkZ: 2, Type: "mesa"})
	require.NoError(t, err, "an unpersisted request is not affected by the store")
	assert.Equal(t, "mesa", resp.Type)
	assert.False(t, resp.Cached)
}

func TestGenerate_StatusCodes(t *testing.T) {
	failing := newMemStore()
	failing.fail = errors.New("connection refused")

	cases := []struct {
		name  string
		store Store
		req   map[string]any
		code  codes.Code
	}{
		{"chunk beyond radius", nil, map[string]any{"chunk_x": 1001}, codes.InvalidArgument},
		{"fractional chunk", nil, map[string]any{"chunk_z": 1.5}, codes.InvalidArgument},
		{"unknown type", nil, map[string]any{"type": "nether"}, codes.InvalidArgument},
		{"bad seed string", nil, map[string]any{"seed": "abc"}, codes.InvalidArgument},
		{"inexact seed number", nil, map[string]any{"seed": math.Pow(2, 60)}, codes.InvalidArgument},
		{"wrong kind", nil, map[string]any{"place": "yes"}, codes.InvalidArgument},
		{"persist without store", nil, map[string]any{"persist": true}, codes.FailedPrecondition},
		{"store down", failing, map[string]any{"persist": true}, codes.Unavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := testGRPCServer(t, tc.store)
			in, err := structpb.NewStruct(tc.req)
			require.NoError(t, err)
			_, err = client.Generate(context.Background(), in)
			require.Error(t, err)
			assert.Equal(t, tc.code, status.Code(err), err.Error())
		})
	}
}

func TestGenerate_CorruptStoredStart(t *testing.T) {
	store := newMemStore()
	store.records[[3]int64{5, 0, 0}] = postgres.StructureRecord{ID: uuid.New(), Variant: "normal", Record: []byte{0x0a}}
	client, _ := testGRPCServer(t, store)

	_, err := client.GenerateStart(context.Background(), Request{Seed: 5, Persist: true})
	assert.Equal(t, codes.DataLoss, status.Code(err))
}

func TestGenerate_NumericSeedMatchesStringSeed(t *testing.T) {
	client, _ := testGRPCServer(t, nil)
	ctx := context.Background()

	in, err := structpb.NewStruct(map[string]any{"seed": 12345})
	require.NoError(t, err)
	out, err := client.Generate(ctx, in)
	require.NoError(t, err)
	numeric, err := ParseResponse(out)
	require.NoError(t, err)

	str, err := client.GenerateStart(ctx, Request{Seed: 12345})
	require.NoError(t, err)
	assert.Equal(t, str, numeric)
}

func TestHealth(t *testing.T) {
	_, conn := testGRPCServer(t, nil)
	hc := healthpb.NewHealthClient(conn)
	for _, name := range []string{"", ServiceName} {
		resp, err := hc.Check(context.Background(), &healthpb.HealthCheckRequest{Service: name})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	}
}

func TestRequest_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		want := Request{
			Seed:          rapid.Int64().Draw(t, "seed"),
			ChunkX:        rapid.IntRange(-1000, 1000).Draw(t, "chunk_x"),
			ChunkZ:        rapid.IntRange(-1000, 1000).Draw(t, "chunk_z"),
			Type:          rapid.SampledFrom([]string{"", "normal", "mesa"}).Draw(t, "type"),
			Place:         rapid.Bool().Draw(t, "place"),
			Persist:       rapid.Bool().Draw(t, "persist"),
			IncludeRecord: rapid.Bool().Draw(t, "include_record"),
		}
		s, err := want.Struct()
		require.NoError(t, err)
		got, err := ParseRequest(s, 1000)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}
