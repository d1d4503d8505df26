package repository_test

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"

	"github.com/cheftrack/cheftrack-backend/pkg/testutil"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	flag.Parse()
	ctx := context.Background()

	if !testing.Short() {
		var err error
		suite, err = testutil.NewIntegrationSuite(ctx)
		if err != nil {
			log.Printf("integration suite unavailable, skipping database tests: %v", err)
			suite = nil
		}
	}

	code := m.Run()

	suite.Cleanup()
	testutil.TerminateContainer(ctx)
	os.Exit(code)
}
