package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nidhogg/parley/internal/assets"
	"github.com/nidhogg/parley/internal/notify"
	pgstore "github.com/nidhogg/parley/internal/store"
)

func TestMain(m *testing.M) {
	if os.Getenv("PARLEY_E2E_TESTS") == "" {
		// Containers are only started on demand; tests skip themselves.
		os.Exit(m.Run())
	}

	ctx := context.Background()
	testLogger, _ = zap.NewDevelopment()

	dsn, pgCleanup, err := startPostgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres container: %v\n", err)
		os.Exit(1)
	}
	defer pgCleanup()

	testStore, err = pgstore.New(dsn, testLogger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect postgres: %v\n", err)
		os.Exit(1)
	}
	defer testStore.Close()
	if err := testStore.Migrate(ctx, "../../migrations"); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	var redisCleanup func()
	testRedisURL, redisCleanup, err = startRedis(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis container: %v\n", err)
		os.Exit(1)
	}
	defer redisCleanup()

	uri, neoCleanup, err := startNeo4j(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "neo4j container: %v\n", err)
		os.Exit(1)
	}
	defer neoCleanup()

	testGraph, err = assets.NewGraph(uri, "", "", testLogger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "neo4j driver: %v\n", err)
		os.Exit(1)
	}
	defer testGraph.Close(ctx)

	os.Exit(m.Run())
}

func TestAnswerPersistenceRoundTrip(t *testing.T) {
	skipIfNoInfra(t)
	ctx := context.Background()

	answer := &pgstore.Answer{
		QID:      "e2e-1",
		Question: "What is the flow rate of pump P-101?",
		Response: "Pump P-101 runs at 120 l/min.",
		Status:   "answered",
	}
	if err := testStore.SaveAnswer(ctx, answer); err != nil {
		t.Fatalf("save answer: %v", err)
	}

	evaluation := &pgstore.EvaluationRecord{
		QID:                "e2e-1",
		Approved:           true,
		Summary:            "grounded in tool results",
		Issues:             []string{},
		Plausibility:       "high",
		FactualConsistency: "high",
		Clarity:            "high",
		Completeness:       "complete",
	}
	if err := testStore.SaveEvaluation(ctx, evaluation); err != nil {
		t.Fatalf("save evaluation: %v", err)
	}

	got, err := testStore.GetAnswer(ctx, "e2e-1")
	if err != nil {
		t.Fatalf("get answer: %v", err)
	}
	if got.Response != answer.Response || got.Status != "answered" {
		t.Fatalf("answer = %+v", got)
	}

	eval, err := testStore.GetEvaluation(ctx, "e2e-1")
	if err != nil {
		t.Fatalf("get evaluation: %v", err)
	}
	if !eval.Approved || eval.Summary != evaluation.Summary {
		t.Fatalf("evaluation = %+v", eval)
	}

	// Upsert replaces the previous outcome for the same request.
	answer.Status = "rejected"
	answer.Response = "rejected on review"
	if err := testStore.SaveAnswer(ctx, answer); err != nil {
		t.Fatalf("resave answer: %v", err)
	}
	got, err = testStore.GetAnswer(ctx, "e2e-1")
	if err != nil {
		t.Fatalf("get answer after upsert: %v", err)
	}
	if got.Status != "rejected" {
		t.Fatalf("status = %q, want rejected", got.Status)
	}
}

func TestListAnswersNewestFirst(t *testing.T) {
	skipIfNoInfra(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		a := &pgstore.Answer{
			QID:      fmt.Sprintf("e2e-list-%d", i),
			Question: fmt.Sprintf("question %d", i),
			Response: "ok",
			Status:   "answered",
		}
		if err := testStore.SaveAnswer(ctx, a); err != nil {
			t.Fatalf("save answer %d: %v", i, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	answers, err := testStore.ListAnswers(ctx, 2)
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("got %d answers, want 2", len(answers))
	}
	if answers[0].CreatedAt.Before(answers[1].CreatedAt) {
		t.Fatal("answers should be newest first")
	}
}

func TestRedisNotificationSink(t *testing.T) {
	skipIfNoInfra(t)
	ctx := context.Background()

	opts, err := redis.ParseURL(testRedisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	sink := notify.NewRedis(client, time.Minute)
	if err := sink.Send(ctx, "e2e-q1", "first"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := sink.Send(ctx, "e2e-q1", "second"); err != nil {
		t.Fatalf("send: %v", err)
	}

	messages, err := sink.Fetch(ctx, "e2e-q1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(messages) != 2 || messages[0] != "first" || messages[1] != "second" {
		t.Fatalf("messages = %v", messages)
	}

	if err := sink.Clear(ctx, "e2e-q1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	messages, err = sink.Fetch(ctx, "e2e-q1")
	if err != nil {
		t.Fatalf("fetch after clear: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("messages after clear = %v", messages)
	}
}

func TestAssetGraphTopology(t *testing.T) {
	skipIfNoInfra(t)
	ctx := context.Background()

	pump := &assets.Asset{
		ID:          "A-100",
		Name:        "Feed Pump",
		Tag:         "P-101",
		Type:        "pump",
		Unit:        "l/min",
		Description: "primary feed pump for unit 1",
	}
	valve := &assets.Asset{
		ID:   "A-101",
		Name: "Inlet Valve",
		Tag:  "V-201",
		Type: "valve",
	}
	if err := testGraph.AddAsset(ctx, pump); err != nil {
		t.Fatalf("add pump: %v", err)
	}
	if err := testGraph.AddAsset(ctx, valve); err != nil {
		t.Fatalf("add valve: %v", err)
	}
	if err := testGraph.Connect(ctx, "A-100", "A-101"); err != nil {
		t.Fatalf("connect: %v", err)
	}

	id, err := testGraph.NameToID(ctx, "Feed Pump")
	if err != nil {
		t.Fatalf("name to id: %v", err)
	}
	if id != "A-100" {
		t.Fatalf("id = %q", id)
	}

	name, err := testGraph.IDToName(ctx, "A-101")
	if err != nil {
		t.Fatalf("id to name: %v", err)
	}
	if name != "Inlet Valve" {
		t.Fatalf("name = %q", name)
	}

	info, err := testGraph.Info(ctx, "A-100")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Tag != "P-101" || info.Unit != "l/min" {
		t.Fatalf("info = %+v", info)
	}

	neighbors, err := testGraph.Neighbors(ctx, "A-100")
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	if len(neighbors) != 1 || neighbors[0] != "A-101" {
		t.Fatalf("neighbors = %v", neighbors)
	}

	if _, err := testGraph.NameToID(ctx, "No Such Asset"); err == nil {
		t.Fatal("expected error for unknown asset name")
	}
}
