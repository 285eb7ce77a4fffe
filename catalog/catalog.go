// Package catalog verifies and provisions the query-catalog objects
// that sit over the gold and predictive tiers: one database plus one
// crawler per published dataset.
package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/transform"
)

// DatabaseName is the analytics database all datasets register under.
const DatabaseName = "smes_analytics"

// ProvisionerName is the remote routine that bootstraps missing
// catalog objects.
const ProvisionerName = "LambdaGlue"

// Dataset locates one published table and how to parse it.
type Dataset struct {
	Name      string
	Bucket    string
	Prefix    string
	Delimiter rune
}

// CrawlerName derives the crawler registered for this dataset.
func (d Dataset) CrawlerName() string {
	return "crawler_" + d.Name
}

// Datasets enumerates the published tables in registration order.
func Datasets(cfg transform.Config) []Dataset {
	return []Dataset{
		{Name: "pacientes", Bucket: cfg.GoldBucket, Prefix: cfg.PatientsGoldPrefix, Delimiter: ';'},
		{Name: "procedimientos", Bucket: cfg.GoldBucket, Prefix: cfg.ProceduresGoldPrefix, Delimiter: ','},
		{Name: "recomendacion_pacientes", Bucket: cfg.PredictiveBucket, Prefix: "prediction/recomendacion_procedimientos/", Delimiter: ','},
		{Name: "consolidado_procedimientos", Bucket: cfg.GoldBucket, Prefix: cfg.MonthlyGoldPrefix, Delimiter: ';'},
	}
}

// CrawlerState is the run state of a registered crawler.
type CrawlerState string

const (
	CrawlerReady   CrawlerState = "READY"
	CrawlerRunning CrawlerState = "RUNNING"
)

// Service is the catalog backend.
type Service interface {
	DatabaseExists(ctx context.Context, name string) (bool, error)
	EnsureDatabase(ctx context.Context, name string) error
	CrawlerExists(ctx context.Context, name string) (bool, error)
	EnsureCrawler(ctx context.Context, name string, ds Dataset) error
	StartCrawler(ctx context.Context, name string) error
	CrawlerState(ctx context.Context, name string) (CrawlerState, error)
}

// Provisioner invokes a remote routine that creates missing catalog
// objects. Its internals are opaque here.
type Provisioner interface {
	Invoke(ctx context.Context, name string, payload []byte) ([]byte, error)
}

// Validation is the outcome of one post-publish check.
type Validation struct {
	Complete    bool     `json:"complete"`
	Missing     []string `json:"missing,omitempty"`
	Provisioned bool     `json:"provisioned"`
}

// Validator checks the catalog after a prediction publish and calls
// the provisioner when anything is missing.
type Validator struct {
	svc  Service
	prov Provisioner
	cfg  transform.Config
	log  zerolog.Logger
}

// NewValidator builds the validator. prov may be nil, in which case a
// miss is only reported.
func NewValidator(svc Service, prov Provisioner, cfg transform.Config, log zerolog.Logger) *Validator {
	return &Validator{svc: svc, prov: prov, cfg: cfg, log: log}
}

// Validate checks the database and every dataset crawler. Any miss
// triggers one provisioner invocation covering all of them.
func (v *Validator) Validate(ctx context.Context) (Validation, error) {
	var out Validation

	ok, err := v.svc.DatabaseExists(ctx, DatabaseName)
	if err != nil {
		return out, fmt.Errorf("check database %s: %w", DatabaseName, err)
	}
	if !ok {
		out.Missing = append(out.Missing, "database:"+DatabaseName)
	}

	for _, ds := range Datasets(v.cfg) {
		name := ds.CrawlerName()
		ok, err := v.svc.CrawlerExists(ctx, name)
		if err != nil {
			return out, fmt.Errorf("check crawler %s: %w", name, err)
		}
		if !ok {
			out.Missing = append(out.Missing, "crawler:"+name)
		}
	}

	if len(out.Missing) == 0 {
		out.Complete = true
		v.log.Info().Msg("catalog complete")
		return out, nil
	}

	v.log.Warn().Strs("missing", out.Missing).Msg("catalog incomplete")
	if v.prov == nil {
		return out, nil
	}
	resp, err := v.prov.Invoke(ctx, ProvisionerName, []byte("{}"))
	if err != nil {
		return out, fmt.Errorf("invoke %s: %w", ProvisionerName, err)
	}
	out.Provisioned = true
	v.log.Info().RawJSON("response", resp).Msg("provisioner invoked")
	return out, nil
}
