package services

import (
	"testing"

	"staysearch/config"
	"staysearch/utils"

	"github.com/stretchr/testify/assert"
)

func TestNewIntentParserRequiresKey(t *testing.T) {
	assert.Nil(t, NewIntentParser(&config.Config{}, utils.NewTestLogger()))
	assert.NotNil(t, NewIntentParser(&config.Config{OpenAIAPIKey: "sk-test"}, utils.NewTestLogger()))
}
