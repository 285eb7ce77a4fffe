package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/transform"
)

type fakeService struct {
	database bool
	crawlers map[string]bool
}

func (f *fakeService) DatabaseExists(context.Context, string) (bool, error) { return f.database, nil }
func (f *fakeService) EnsureDatabase(context.Context, string) error         { f.database = true; return nil }
func (f *fakeService) CrawlerExists(_ context.Context, name string) (bool, error) {
	return f.crawlers[name], nil
}
func (f *fakeService) EnsureCrawler(_ context.Context, name string, _ Dataset) error {
	f.crawlers[name] = true
	return nil
}
func (f *fakeService) StartCrawler(context.Context, string) error { return nil }
func (f *fakeService) CrawlerState(context.Context, string) (CrawlerState, error) {
	return CrawlerReady, nil
}

type fakeProvisioner struct {
	calls []string
	err   error
}

func (f *fakeProvisioner) Invoke(_ context.Context, name string, _ []byte) ([]byte, error) {
	f.calls = append(f.calls, name)
	return []byte(`{"status":"ok"}`), f.err
}

func completeService(cfg transform.Config) *fakeService {
	svc := &fakeService{database: true, crawlers: map[string]bool{}}
	for _, ds := range Datasets(cfg) {
		svc.crawlers[ds.CrawlerName()] = true
	}
	return svc
}

func TestValidateComplete(t *testing.T) {
	cfg := transform.DefaultConfig()
	prov := &fakeProvisioner{}
	v := NewValidator(completeService(cfg), prov, cfg, zerolog.Nop())

	got, err := v.Validate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !got.Complete || got.Provisioned || len(got.Missing) != 0 {
		t.Errorf("validation = %+v", got)
	}
	if len(prov.calls) != 0 {
		t.Errorf("provisioner invoked on complete catalog: %v", prov.calls)
	}
}

func TestValidateMissingCrawlerProvisions(t *testing.T) {
	cfg := transform.DefaultConfig()
	svc := completeService(cfg)
	svc.crawlers["crawler_pacientes"] = false
	prov := &fakeProvisioner{}
	v := NewValidator(svc, prov, cfg, zerolog.Nop())

	got, err := v.Validate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.Complete || !got.Provisioned {
		t.Errorf("validation = %+v", got)
	}
	if len(got.Missing) != 1 || got.Missing[0] != "crawler:crawler_pacientes" {
		t.Errorf("missing = %v", got.Missing)
	}
	if len(prov.calls) != 1 || prov.calls[0] != ProvisionerName {
		t.Errorf("provisioner calls = %v", prov.calls)
	}
}

func TestValidateMissingDatabase(t *testing.T) {
	cfg := transform.DefaultConfig()
	svc := completeService(cfg)
	svc.database = false
	v := NewValidator(svc, nil, cfg, zerolog.Nop())

	got, err := v.Validate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.Complete || got.Provisioned {
		t.Errorf("validation = %+v", got)
	}
	if len(got.Missing) != 1 || got.Missing[0] != "database:"+DatabaseName {
		t.Errorf("missing = %v", got.Missing)
	}
}

func TestValidateProvisionerFailure(t *testing.T) {
	cfg := transform.DefaultConfig()
	svc := completeService(cfg)
	svc.database = false
	prov := &fakeProvisioner{err: errors.New("throttled")}
	v := NewValidator(svc, prov, cfg, zerolog.Nop())

	if _, err := v.Validate(context.Background()); err == nil {
		t.Fatal("want error from failed provisioner invocation")
	}
}

func TestDatasets(t *testing.T) {
	cfg := transform.DefaultConfig()
	ds := Datasets(cfg)
	if len(ds) != 4 {
		t.Fatalf("datasets = %d", len(ds))
	}
	byName := map[string]Dataset{}
	for _, d := range ds {
		byName[d.Name] = d
	}
	if d := byName["pacientes"]; d.Delimiter != ';' || d.Bucket != cfg.GoldBucket {
		t.Errorf("pacientes = %+v", d)
	}
	if d := byName["recomendacion_pacientes"]; d.Delimiter != ',' || d.Bucket != cfg.PredictiveBucket {
		t.Errorf("recomendacion = %+v", d)
	}
	if got := byName["procedimientos"].CrawlerName(); got != "crawler_procedimientos" {
		t.Errorf("crawler name = %q", got)
	}
}
