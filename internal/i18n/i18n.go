// internal/i18n/i18n.go
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type I18n struct {
	mu           sync.RWMutex
	translations map[string]map[string]string
	defaultLang  string
}

var instance *I18n
var once sync.Once

// defaultEnglish is the built-in catalogue. Locale files overlay it, so the
// server never depends on files on disk for its English messages.
var defaultEnglish = map[string]string{
	KeySuccess: "Success",
	KeyError:   "Error",

	KeyAuthRequired:           "Authentication required",
	KeyAuthInvalidToken:       "Invalid authentication token",
	KeyAuthTokenExpired:       "Authentication token expired",
	KeyAuthInvalidCredentials: "Invalid email or password",
	KeyAuthLoginSuccess:       "Logged in successfully",
	KeyAdminAccessDenied:      "Administrator access required",

	KeyValidationInvalid: "Invalid %s",

	KeyRateLimitExceeded: "Too many requests, please try again later",

	KeyBusinessCreated:     "Licensed business created",
	KeyBusinessUpdated:     "Licensed business updated",
	KeyBusinessDeactivated: "Licensed business deactivated",
	KeyBusinessNotFound:    "Licensed business not found",

	KeyQualifierRegistered:  "Qualifier registered",
	KeyQualifierNotFound:    "Qualifier not found",
	KeyQualifierAssigned:    "Qualifier assigned to licensed business",
	KeyQualifierExited:      "Qualifier exit recorded; affected projects flagged",
	KeyAssignmentNotFound:   "Assignment not found",
	KeyCapacityExceeded:     "Qualifier %s is already assigned to %d licensed businesses",
	KeyCutoffExceeded:       "Qualifier authority for this business ended before the action date",
	KeyNoValidQualifier:     "No active qualifier assignment exists for this business",
	KeyOversightMinimum:     "Permit has no valid oversight action on record",
	KeyQualifierAbsent:      "Project is flagged qualifier-absent; a justification is required",
	KeyJustificationInvalid: "Justification text must not be empty",

	KeyProjectCreated:  "Project created",
	KeyProjectUpdated:  "Project updated",
	KeyProjectNotFound: "Project not found",

	KeyPermitCreated:         "Permit created",
	KeyPermitFinalized:       "Permit finalized",
	KeyPermitNotFound:        "Permit not found",
	KeyPermitBadTransition:   "Permit cannot move from %s to %s",
	KeyOversightRecorded:     "Oversight action recorded",
	KeyOversightNotFound:     "Oversight action not found",
	KeyJustificationRecorded: "Compliance justification recorded",
	KeyJustificationNotFound: "Compliance justification not found",
}

func Initialize(localesPath string) error {
	var err error
	once.Do(func() {
		instance = &I18n{
			translations: map[string]map[string]string{"en": defaultEnglish},
			defaultLang:  "en",
		}
		err = instance.LoadTranslations(localesPath)
	})
	return err
}

// LoadTranslations overlays any *.json locale files found under localesPath.
// A missing directory is not an error; the embedded English catalogue is
// always available.
func (i *I18n) LoadTranslations(localesPath string) error {
	entries, err := os.ReadDir(localesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read locales directory %s: %w", localesPath, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".json")

		data, err := os.ReadFile(filepath.Join(localesPath, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", entry.Name(), err)
		}

		i.mu.Lock()
		existing, ok := i.translations[lang]
		if !ok {
			existing = make(map[string]string, len(translations))
			i.translations[lang] = existing
		}
		for key, text := range translations {
			existing[key] = text
		}
		i.mu.Unlock()
	}

	return nil
}

func (i *I18n) T(lang, key string, args ...interface{}) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	// Try to get translation for requested language
	if translations, exists := i.translations[lang]; exists {
		if text, exists := translations[key]; exists {
			if len(args) > 0 {
				return fmt.Sprintf(text, args...)
			}
			return text
		}
	}

	// Fallback to default language
	if lang != i.defaultLang {
		if translations, exists := i.translations[i.defaultLang]; exists {
			if text, exists := translations[key]; exists {
				if len(args) > 0 {
					return fmt.Sprintf(text, args...)
				}
				return text
			}
		}
	}

	// Return key if no translation found
	return key
}

// Global functions
func T(lang, key string, args ...interface{}) string {
	if instance == nil {
		Initialize("./internal/i18n/locales")
	}
	return instance.T(lang, key, args...)
}
