//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoloChatFlow(t *testing.T) {
	env := SetupTestEnv(t)

	t.Run("first message creates relationship and mood", func(t *testing.T) {
		body := map[string]any{
			"message":  "hello there",
			"deviceId": "flow-device",
			"agents":   []any{ChatAgent("Vera", "INTJ")},
		}

		resp := DoRequest(t, env, "POST", "/api/chat", body)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := ParseResponse(t, resp)
		assert.Equal(t, "Good to hear from you.", result["content"])
		assert.EqualValues(t, 1, result["trustLevel"])
		assert.EqualValues(t, 10, result["affectionXp"])
		assert.Equal(t, "Stranger", result["label"])

		mood := result["mood"].(map[string]any)
		assert.Equal(t, "neutral", mood["state"])
		assert.EqualValues(t, 50, mood["energy"])
	})

	t.Run("relationship endpoint reflects the chat", func(t *testing.T) {
		resp := DoRequest(t, env, "GET", "/api/relationship/flow-device/INTJ", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := ParseResponse(t, resp)
		assert.EqualValues(t, 1, result["trustLevel"])
		assert.EqualValues(t, 10, result["affectionXp"])
		assert.EqualValues(t, 1, result["messageCount"])
	})

	t.Run("irritant message moves the mood ledger", func(t *testing.T) {
		body := map[string]any{
			"message":  "that is completely illogical",
			"deviceId": "flow-device",
			"agents":   []any{ChatAgent("Vera", "INTJ")},
		}

		resp := DoRequest(t, env, "POST", "/api/chat", body)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		moodResp := DoRequest(t, env, "GET", "/api/mood/flow-device/INTJ", nil)
		require.Equal(t, http.StatusOK, moodResp.StatusCode)
		result := ParseResponse(t, moodResp)
		assert.EqualValues(t, -16, result["value"])
		assert.EqualValues(t, 45, result["energy"])
	})

	t.Run("unknown pair returns stranger defaults without creating rows", func(t *testing.T) {
		resp := DoRequest(t, env, "GET", "/api/relationship/flow-device/ENFP", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := ParseResponse(t, resp)
		assert.EqualValues(t, 1, result["trustLevel"])
		assert.EqualValues(t, 0, result["messageCount"])

		var count int
		err := env.Pool.QueryRow(context.Background(),
			`SELECT count(*) FROM relationships WHERE device_id = 'flow-device' AND companion_type = 'ENFP'`,
		).Scan(&count)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestGroupChatFlow(t *testing.T) {
	env := SetupTestEnv(t)

	body := map[string]any{
		"message":     "what should we do this weekend?",
		"deviceId":    "group-device",
		"isGroupChat": true,
		"agents": []any{
			ChatAgent("Vera", "INTJ"),
			ChatAgent("Milo", "ENFP"),
			ChatAgent("Ida", "ISTP"),
		},
	}

	resp := DoRequest(t, env, "POST", "/api/chat", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := ParseResponse(t, resp)
	responses := result["responses"].([]any)
	require.Len(t, responses, 3)

	first := responses[0].(map[string]any)
	assert.Equal(t, "INTJ", first["type"])
	assert.Equal(t, "Vera", first["name"])
	assert.Equal(t, "Count me in.", first["content"])
}

func TestWeeklyChallengeFlow(t *testing.T) {
	env := SetupTestEnv(t)

	// Claim before chatting: 404.
	resp := DoRequest(t, env, "POST", "/api/weekly-challenge/claim", map[string]string{"deviceId": "challenge-device"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Chat with three companions.
	for _, a := range []map[string]any{
		ChatAgent("Vera", "INTJ"),
		ChatAgent("Milo", "ENFP"),
		ChatAgent("Ida", "ISTP"),
	} {
		body := map[string]any{
			"message":  "hey!",
			"deviceId": "challenge-device",
			"agents":   []any{a},
		}
		chatResp := DoRequest(t, env, "POST", "/api/chat", body)
		require.Equal(t, http.StatusOK, chatResp.StatusCode)
		chatResp.Body.Close()
	}

	progress := DoRequest(t, env, "GET", "/api/weekly-challenge/challenge-device", nil)
	require.Equal(t, http.StatusOK, progress.StatusCode)
	result := ParseResponse(t, progress)
	assert.Len(t, result["uniqueAgentsChatted"].([]any), 3)
	assert.Equal(t, false, result["isClaimed"])

	// Claim succeeds and grants XP.
	claim := DoRequest(t, env, "POST", "/api/weekly-challenge/claim", map[string]string{"deviceId": "challenge-device"})
	require.Equal(t, http.StatusOK, claim.StatusCode)
	claimResult := ParseResponse(t, claim)
	assert.Equal(t, true, claimResult["success"])
	assert.Equal(t, "500 Bonus XP granted to all companions", claimResult["reward"])

	// 10 XP from the chat plus 500 bonus lands at level 3 with 210 XP.
	rel := DoRequest(t, env, "GET", "/api/relationship/challenge-device/INTJ", nil)
	require.Equal(t, http.StatusOK, rel.StatusCode)
	relResult := ParseResponse(t, rel)
	assert.EqualValues(t, 3, relResult["trustLevel"])
	assert.EqualValues(t, 210, relResult["affectionXp"])

	// Second claim rejected.
	again := DoRequest(t, env, "POST", "/api/weekly-challenge/claim", map[string]string{"deviceId": "challenge-device"})
	assert.Equal(t, http.StatusBadRequest, again.StatusCode)
	againResult := ParseResponse(t, again)
	assert.Equal(t, "Reward already claimed", againResult["error"])
}
