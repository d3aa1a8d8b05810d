package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/foodgram-backend/internal/testhelpers"
)

func TestRegisterEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	payload := gin.H{
		"email":      "chef@example.com",
		"username":   "chef",
		"first_name": "Ivan",
		"last_name":  "Petrov",
		"password":   testPassword,
	}
	w := env.request(t, http.MethodPost, "/api/users", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeJSON(t, w)
	assert.Equal(t, "chef", body["username"])
	assert.Equal(t, "chef@example.com", body["email"])
	assert.NotContains(t, body, "password")

	// duplicate email is a field-keyed error
	payload["username"] = "otherchef"
	w = env.request(t, http.MethodPost, "/api/users", "", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeJSON(t, w), "email")
}

func TestLoginAndLogoutEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	env.registerUser(t, "chef", "chef@example.com")

	w := env.request(t, http.MethodPost, "/api/auth/token/login", "", gin.H{
		"email":    "chef@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, ok := decodeJSON(t, w)["auth_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	w = env.request(t, http.MethodPost, "/api/auth/token/login", "", gin.H{
		"email":    "chef@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid credentials", decodeJSON(t, w)["detail"])

	w = env.request(t, http.MethodPost, "/api/auth/token/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/token/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	user, token := env.registerUser(t, "chef", "chef@example.com")

	w := env.request(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, user.ID.String(), body["id"])
	assert.Equal(t, "chef", body["username"])
	assert.Equal(t, false, body["is_subscribed"])

	w = env.request(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetPasswordEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "chef", "chef@example.com")

	w := env.request(t, http.MethodPost, "/api/users/set_password", token, gin.H{
		"current_password": "wrong-password",
		"new_password":     "another-long-passphrase",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeJSON(t, w), "current_password")

	w = env.request(t, http.MethodPost, "/api/users/set_password", token, gin.H{
		"current_password": testPassword,
		"new_password":     "another-long-passphrase",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSubscriptionEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	reader, token := env.registerUser(t, "reader", "reader@example.com")
	chef, _ := env.registerUser(t, "chef", "chef@example.com")
	for i := 0; i < 3; i++ {
		testhelpers.CreateRecipe(t, env.db, chef, "Recipe", nil, nil)
	}

	// following yourself is rejected
	w := env.request(t, http.MethodPost, "/api/users/"+reader.ID.String()+"/subscribe", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "you cannot subscribe to yourself", decodeJSON(t, w)["detail"])

	w = env.request(t, http.MethodPost, "/api/users/"+chef.ID.String()+"/subscribe?recipes_limit=2", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, "chef", body["username"])
	assert.Equal(t, true, body["is_subscribed"])
	assert.Len(t, body["recipes"], 2)
	assert.EqualValues(t, 3, body["recipes_count"])

	w = env.request(t, http.MethodPost, "/api/users/"+chef.ID.String()+"/subscribe", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "you are already subscribed to this user", decodeJSON(t, w)["detail"])

	w = env.request(t, http.MethodGet, "/api/users/subscriptions?recipes_limit=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeJSON(t, w)
	assert.EqualValues(t, 1, body["count"])
	results := body["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Len(t, results[0].(map[string]interface{})["recipes"], 1)

	w = env.request(t, http.MethodDelete, "/api/users/"+chef.ID.String()+"/subscribe", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.request(t, http.MethodDelete, "/api/users/"+chef.ID.String()+"/subscribe", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "you cannot delete a subscription you are not subscribed to", decodeJSON(t, w)["detail"])
}

func TestListUsersEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	env.registerUser(t, "alice", "alice@example.com")
	env.registerUser(t, "bob", "bob@example.com")

	w := env.request(t, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.EqualValues(t, 2, body["count"])
	assert.Len(t, body["results"], 2)
}

func TestGetUserEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	chef, _ := env.registerUser(t, "chef", "chef@example.com")

	w := env.request(t, http.MethodGet, "/api/users/"+chef.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chef", decodeJSON(t, w)["username"])

	w = env.request(t, http.MethodGet, "/api/users/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
