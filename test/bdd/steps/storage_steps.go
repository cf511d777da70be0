package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cucumber/godog"

	"github.com/kantai-tool/fleetdeck/internal/adapters/persistence"
	"github.com/kantai-tool/fleetdeck/internal/application/auth"
	"github.com/kantai-tool/fleetdeck/internal/application/mediator"
	appStorage "github.com/kantai-tool/fleetdeck/internal/application/storage"
	"github.com/kantai-tool/fleetdeck/internal/application/storage/commands"
	"github.com/kantai-tool/fleetdeck/internal/application/storage/queries"
	"github.com/kantai-tool/fleetdeck/internal/domain/player"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
)

type storageContext struct {
	dir      string
	store    *persistence.FileDocumentStore
	mediator mediator.Mediator
	token    string
	loaded   *queries.LoadDocumentResponse
	err      error
}

func (sc *storageContext) reset() error {
	sc.cleanup()
	dir, err := os.MkdirTemp("", "fleetdeck-bdd-")
	if err != nil {
		return err
	}
	store, err := persistence.NewFileDocumentStore(dir)
	if err != nil {
		return err
	}
	m := mediator.NewMediator()
	m.Use(auth.UsernameMiddleware())
	if err := appStorage.RegisterHandlers(m, store); err != nil {
		return err
	}
	sc.dir = dir
	sc.store = store
	sc.mediator = m
	sc.token = ""
	sc.loaded = nil
	sc.err = nil
	return nil
}

func (sc *storageContext) cleanup() {
	if sc.dir != "" {
		_ = os.RemoveAll(sc.dir)
		sc.dir = ""
	}
}

func (sc *storageContext) username(name string) (player.Username, error) {
	return player.ParseToken(name)
}

func (sc *storageContext) iLogInAs(name string) error {
	resp, err := sc.mediator.Send(context.Background(), &commands.LoginCommand{Username: name})
	sc.err = err
	if err == nil {
		sc.token = resp.(*commands.LoginResponse).Token
	}
	return nil
}

func (sc *storageContext) theTokenShouldBe(want string) error {
	if sc.err != nil {
		return fmt.Errorf("login failed: %w", sc.err)
	}
	if sc.token != want {
		return fmt.Errorf("expected token %q, got %q", want, sc.token)
	}
	return nil
}

func (sc *storageContext) loginShouldBeRejected() error {
	if sc.err == nil {
		return fmt.Errorf("expected login to fail, got token %q", sc.token)
	}
	return nil
}

func (sc *storageContext) userSavesDocument(name, kind string, doc *godog.DocString) error {
	user, err := sc.username(name)
	if err != nil {
		return err
	}
	_, sc.err = sc.mediator.Send(context.Background(), &commands.SaveDocumentCommand{
		Username: user,
		Kind:     storage.Kind(kind),
		Data:     []byte(doc.Content),
	})
	return nil
}

func (sc *storageContext) theFileForContains(kind, name string, doc *godog.DocString) error {
	user, err := sc.username(name)
	if err != nil {
		return err
	}
	return os.WriteFile(sc.store.Path(user, storage.Kind(kind)), []byte(doc.Content), 0644)
}

func (sc *storageContext) userLoadsDocument(name, kind string) error {
	user, err := sc.username(name)
	if err != nil {
		return err
	}
	resp, err := sc.mediator.Send(context.Background(), &queries.LoadDocumentQuery{Username: user, Kind: storage.Kind(kind)})
	sc.err = err
	if err == nil {
		sc.loaded = resp.(*queries.LoadDocumentResponse)
	}
	return nil
}

func (sc *storageContext) theDocumentShouldBe(doc *godog.DocString) error {
	if sc.err != nil {
		return fmt.Errorf("load failed: %w", sc.err)
	}
	var got, want interface{}
	if err := json.Unmarshal(sc.loaded.Data, &got); err != nil {
		return fmt.Errorf("loaded document is not JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(doc.Content), &want); err != nil {
		return err
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		return fmt.Errorf("expected %s, got %s", strings.TrimSpace(doc.Content), sc.loaded.Data)
	}
	return nil
}

func (sc *storageContext) theDocumentShouldBeTheEmptyDefault() error {
	if sc.err != nil {
		return fmt.Errorf("load failed: %w", sc.err)
	}
	if sc.loaded.Found {
		return fmt.Errorf("expected the empty default, got stored %s", sc.loaded.Data)
	}
	return nil
}

func (sc *storageContext) theSaveShouldBeRejectedAs(reason string) error {
	if sc.err == nil {
		return fmt.Errorf("expected the save to be rejected")
	}
	if !strings.Contains(sc.err.Error(), reason) {
		return fmt.Errorf("expected rejection containing %q, got %v", reason, sc.err)
	}
	return nil
}

func (sc *storageContext) theSaveShouldSucceed() error {
	return sc.err
}

// InitializeStorageScenario registers the server-side document steps
func InitializeStorageScenario(ctx *godog.ScenarioContext) {
	sc := &storageContext{}

	ctx.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		return ctx, sc.reset()
	})
	ctx.After(func(ctx context.Context, s *godog.Scenario, err error) (context.Context, error) {
		sc.cleanup()
		return ctx, nil
	})

	ctx.Step(`^I log in as "([^"]*)"$`, sc.iLogInAs)
	ctx.Step(`^the token should be "([^"]*)"$`, sc.theTokenShouldBe)
	ctx.Step(`^the login should be rejected$`, sc.loginShouldBeRejected)
	ctx.Step(`^"([^"]*)" saves the "([^"]*)" document:$`, sc.userSavesDocument)
	ctx.Step(`^the "([^"]*)" file for "([^"]*)" contains:$`, sc.theFileForContains)
	ctx.Step(`^"([^"]*)" loads the "([^"]*)" document$`, sc.userLoadsDocument)
	ctx.Step(`^the document should be:$`, sc.theDocumentShouldBe)
	ctx.Step(`^the document should be the empty default$`, sc.theDocumentShouldBeTheEmptyDefault)
	ctx.Step(`^the save should succeed$`, sc.theSaveShouldSucceed)
	ctx.Step(`^the save should be rejected as "([^"]*)"$`, sc.theSaveShouldBeRejectedAs)
}
