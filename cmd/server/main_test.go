package main_test

import (
	"bytes"
	"strings"
	"testing"

	"gorm.io/gorm"

	servercmd "github.com/kareemeredaze/maitre-seo/cmd/server"
	"github.com/kareemeredaze/maitre-seo/internal/storage"
)

const (
	testMissingConfigurationMessage = "missing required configuration"

	testPlaceholderDatabaseDSN   = "file:server-test?mode=memory&cache=shared"
	testPlaceholderIdentityURL   = "https://identity.example.com/auth/v1"
	testPlaceholderTokenSecret   = "token-secret"
	testPlaceholderSessionSecret = "session-secret"
)

func TestServerCommandMissingConfigurationShowsHelp(t *testing.T) {
	testCases := []struct {
		name                string
		environment         map[string]string
		expectedMissingFlag string
	}{
		{
			name: "missing database dsn",
			environment: map[string]string{
				"DB_DSN":              "",
				"IDENTITY_BASE_URL":   testPlaceholderIdentityURL,
				"IDENTITY_JWT_SECRET": testPlaceholderTokenSecret,
				"SESSION_SECRET":      testPlaceholderSessionSecret,
			},
			expectedMissingFlag: "db-dsn",
		},
		{
			name: "missing identity base url",
			environment: map[string]string{
				"DB_DSN":              testPlaceholderDatabaseDSN,
				"IDENTITY_BASE_URL":   "",
				"IDENTITY_JWT_SECRET": testPlaceholderTokenSecret,
				"SESSION_SECRET":      testPlaceholderSessionSecret,
			},
			expectedMissingFlag: "identity-base-url",
		},
		{
			name: "missing token secret",
			environment: map[string]string{
				"DB_DSN":              testPlaceholderDatabaseDSN,
				"IDENTITY_BASE_URL":   testPlaceholderIdentityURL,
				"IDENTITY_JWT_SECRET": "",
				"SESSION_SECRET":      testPlaceholderSessionSecret,
			},
			expectedMissingFlag: "identity-jwt-secret",
		},
		{
			name: "missing session secret",
			environment: map[string]string{
				"DB_DSN":              testPlaceholderDatabaseDSN,
				"IDENTITY_BASE_URL":   testPlaceholderIdentityURL,
				"IDENTITY_JWT_SECRET": testPlaceholderTokenSecret,
				"SESSION_SECRET":      "",
			},
			expectedMissingFlag: "session-secret",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(testingT *testing.T) {
			for environmentKey, environmentValue := range testCase.environment {
				testingT.Setenv(environmentKey, environmentValue)
			}

			databaseOpenerStub := func(configuration storage.Config) (*gorm.DB, error) {
				testingT.Fatalf("database opener invoked with %s", configuration.DataSourceName)
				return nil, nil
			}

			application := servercmd.NewServerApplication().WithDatabaseOpener(databaseOpenerStub)
			command, commandErr := application.Command()
			if commandErr != nil {
				testingT.Fatalf("unexpected command construction error: %v", commandErr)
			}

			commandOutput := &bytes.Buffer{}
			command.SetOut(commandOutput)
			command.SetErr(commandOutput)

			executionErr := command.Execute()
			if executionErr == nil {
				testingT.Fatalf("expected error for missing configuration")
			}

			if !strings.Contains(executionErr.Error(), testMissingConfigurationMessage) {
				testingT.Fatalf("expected missing configuration error, got: %v", executionErr)
			}
			if !strings.Contains(executionErr.Error(), testCase.expectedMissingFlag) {
				testingT.Fatalf("expected error to name flag %s, got: %v", testCase.expectedMissingFlag, executionErr)
			}
		})
	}
}

func TestServerCommandRejectsPositionalArguments(t *testing.T) {
	t.Setenv("DB_DSN", testPlaceholderDatabaseDSN)
	t.Setenv("IDENTITY_BASE_URL", testPlaceholderIdentityURL)
	t.Setenv("IDENTITY_JWT_SECRET", testPlaceholderTokenSecret)
	t.Setenv("SESSION_SECRET", testPlaceholderSessionSecret)

	application := servercmd.NewServerApplication()
	command, commandErr := application.Command()
	if commandErr != nil {
		t.Fatalf("unexpected command construction error: %v", commandErr)
	}

	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"unexpected"})

	executionErr := command.Execute()
	if executionErr == nil {
		t.Fatalf("expected error for unexpected arguments")
	}
	if !strings.Contains(executionErr.Error(), "unexpected command arguments") {
		t.Fatalf("expected unexpected argument error, got: %v", executionErr)
	}
}
