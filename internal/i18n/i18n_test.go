package i18n

import (
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/mverberg/broadside/internal/domain/command"
)

// deciderCodes lists every rejection code the deciders emit. The catalog
// must cover each one so no rejection ever surfaces as a bare code.
var deciderCodes = []Code{
	CodePayloadDecodeFailed,
	CodePayloadEncodeFailed,
	CodeCommandTypeUnsupported,
	CodeStateInvalid,
	CodeSystemRoutingFailed,
	CodeInternalError,
	CodeProfileAlreadyExists,
	CodeProfileNotCreated,
	CodeProfileNameEmpty,
	CodeCardsGrantEmpty,
	CodeCardsAlreadyOwned,
	CodeCardUnknown,
	CodeCardNotOwned,
	CodeQuestIDRequired,
	CodeQuestMismatch,
	CodePhaseInvalid,
	CodeBattleActive,
	CodeBattleNotActive,
	CodeBattleIDUnavailable,
	CodeDeckSizeOutOfRange,
	CodeDeckDuplicateCard,
	CodeFlagshipHullInvalid,
	CodeRoundLimitInvalid,
	CodeNotYourTurn,
	CodeCombatantInvalid,
	CodeCombatantMismatch,
	CodeMulliganAlreadyTaken,
	CodeCardNotInHand,
	CodePositionInvalid,
	CodePositionOccupied,
	CodePositionEmpty,
	CodeEnergyInsufficient,
	CodeDeckEmpty,
	CodeHandFull,
	CodeShipExhausted,
	CodeShipStunned,
	CodeAbilityUnknown,
	CodeAbilityOnCooldown,
	CodeTargetInvalid,
	CodeHealNoEffect,
	CodeReserveUnavailable,
	CodeReserveNoEffect,
}

func TestBaseCatalogCoversEveryDeciderCode(t *testing.T) {
	catalog := GetCatalog(BaseLocale)
	for _, code := range deciderCodes {
		if !catalog.Has(code) {
			t.Errorf("catalog is missing a message for %s", code)
		}
	}
	if got, want := len(catalog.Codes()), len(deciderCodes); got != want {
		t.Fatalf("catalog defines %d codes, deciders emit %d", got, want)
	}
}

func TestBaseCatalogMessagesAreNonEmpty(t *testing.T) {
	catalog := GetCatalog(BaseLocale)
	for _, code := range catalog.Codes() {
		text := catalog.Format(string(code), nil)
		if strings.TrimSpace(text) == "" {
			t.Errorf("message for %s is blank", code)
		}
		if text == genericMessage {
			t.Errorf("message for %s fell back to the generic line", code)
		}
	}
}

func TestRejectionTextUsesCatalogMessage(t *testing.T) {
	got := RejectionText("en-US", command.Rejection{
		Code:    string(CodeEnergyInsufficient),
		Message: "insufficient energy: have 1, need 3",
	})
	if got != "Not enough energy for that action" {
		t.Fatalf("RejectionText = %q, want catalog message", got)
	}
}

func TestRejectionTextFallsBackToRejectionMessage(t *testing.T) {
	got := RejectionText("en-US", command.Rejection{
		Code:    "SOME_FUTURE_CODE",
		Message: "a literal decider message",
	})
	if got != "a literal decider message" {
		t.Fatalf("RejectionText = %q, want the rejection's own message", got)
	}
}

func TestRejectionTextGenericWhenNothingUsable(t *testing.T) {
	got := RejectionText("", command.Rejection{Code: "SOME_FUTURE_CODE"})
	if got != genericMessage {
		t.Fatalf("RejectionText = %q, want generic message", got)
	}
}

func TestGetCatalogFallsBackToBaseLocale(t *testing.T) {
	for _, locale := range []string{"", "xx-YY", "not a locale", "pt-BR"} {
		catalog := GetCatalog(locale)
		if catalog == nil {
			t.Fatalf("GetCatalog(%q) returned nil", locale)
		}
		if catalog.Locale() != BaseLocale {
			t.Fatalf("GetCatalog(%q) locale = %q, want %q", locale, catalog.Locale(), BaseLocale)
		}
	}
}

func TestGetCatalogMatchesEnglishVariants(t *testing.T) {
	catalog := GetCatalog("en-GB")
	if catalog.Locale() != BaseLocale {
		t.Fatalf("en-GB should match the base catalog, got %q", catalog.Locale())
	}
}

func TestFormatInterpolatesMetadata(t *testing.T) {
	catalog := &Catalog{
		locale: "en-US",
		tag:    language.AmericanEnglish,
		messages: map[Code]string{
			"TEST_TEMPLATE": "have {{.Have}}, need {{.Need}}",
		},
	}
	got := catalog.Format("TEST_TEMPLATE", map[string]string{"Have": "1", "Need": "3"})
	if got != "have 1, need 3" {
		t.Fatalf("Format = %q", got)
	}
}

func TestFormatUnknownCodeIsGeneric(t *testing.T) {
	catalog := GetCatalog(BaseLocale)
	if got := catalog.Format("NO_SUCH_CODE", nil); got != genericMessage {
		t.Fatalf("Format = %q, want generic message", got)
	}
}

func TestRegisterPublishesMessages(t *testing.T) {
	if err := Register(); err != nil {
		t.Fatalf("register: %v", err)
	}
}
