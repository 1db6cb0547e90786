package netwatch

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sqllabRoutes = []Route{
	{Alias: "sqlLabQuery", Method: "POST", Pattern: "/superset/sql_json/"},
	{Alias: "getSavedQuery", Pattern: "savedqueryviewapi/**"},
	{Alias: "getTables", Pattern: "superset/tables/**"},
}

func newInterceptor(t *testing.T) *Interceptor {
	i, err := New(sqllabRoutes...)
	require.NoError(t, err)
	return i
}

func request(i *Interceptor, id, method, url string) {
	i.Handle(&network.EventRequestWillBeSent{
		RequestID: network.RequestID(id),
		Request:   &network.Request{Method: method, URL: url},
	})
}

func complete(i *Interceptor, id string, status int64) {
	i.Handle(&network.EventResponseReceived{
		RequestID: network.RequestID(id),
		Response:  &network.Response{Status: status},
	})
	i.Handle(&network.EventLoadingFinished{RequestID: network.RequestID(id)})
}

func TestRouteMatch(t *testing.T) {
	cases := []struct {
		route  Route
		method string
		url    string
		match  bool
	}{
		{sqllabRoutes[0], "POST", "http://localhost:8088/superset/sql_json/", true},
		{sqllabRoutes[0], "post", "http://localhost:8088/superset/sql_json/?foo=1", true},
		{sqllabRoutes[0], "GET", "http://localhost:8088/superset/sql_json/", false},
		{sqllabRoutes[0], "POST", "http://localhost:8088/superset/sql_json/extra", false},
		{sqllabRoutes[1], "GET", "http://localhost:8088/savedqueryviewapi/api/get/12", true},
		{sqllabRoutes[1], "GET", "http://localhost:8088/prefix/savedqueryviewapi/api/get/12", true},
		{sqllabRoutes[1], "GET", "http://localhost:8088/sqllab/my_queries/", false},
		{sqllabRoutes[2], "GET", "http://localhost:8088/superset/tables/1/main/undefined/", true},
		{sqllabRoutes[2], "GET", "http://localhost:8088/superset/sqllab", false},
	}
	for _, c := range cases {
		m, err := compile(c.route)
		require.NoError(t, err)
		assert.Equal(t, c.match, m.match(c.method, c.url), "%s %s %s", c.route.Alias, c.method, c.url)
	}
}

func TestNewRejectsBadRoutes(t *testing.T) {
	_, err := New(Route{Pattern: "/x"})
	assert.True(t, errors.IsNotValid(err))

	_, err = New(Route{Alias: "a", Pattern: "/x"}, Route{Alias: "a", Pattern: "/y"})
	assert.True(t, errors.IsAlreadyExists(err))
}

func TestWaitForCompletedExchange(t *testing.T) {
	i := newInterceptor(t)
	request(i, "1", "POST", "http://localhost:8088/superset/sql_json/")
	complete(i, "1", 200)
	assert.EqualValues(t, 1, i.Observed())

	got, err := i.Wait(context.Background(), "sqlLabQuery")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sqlLabQuery", got[0].Alias)
	assert.EqualValues(t, 200, got[0].Status)
	assert.False(t, got[0].Failed)
}

func TestNthWaitYieldsNthExchange(t *testing.T) {
	i := newInterceptor(t)
	request(i, "1", "POST", "http://localhost:8088/superset/sql_json/")
	request(i, "2", "POST", "http://localhost:8088/superset/sql_json/")
	complete(i, "1", 200)
	complete(i, "2", 202)

	got, err := i.Wait(context.Background(), "sqlLabQuery")
	require.NoError(t, err)
	assert.Equal(t, "1", got[0].RequestID)

	got, err = i.Wait(context.Background(), "sqlLabQuery")
	require.NoError(t, err)
	assert.Equal(t, "2", got[0].RequestID)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = i.Wait(ctx, "sqlLabQuery")
	require.Error(t, err)
	assert.Equal(t, context.DeadlineExceeded, errors.Cause(err))
}

func TestWaitBlocksUntilExchangeCompletes(t *testing.T) {
	i := newInterceptor(t)
	done := make(chan []Exchange)
	go func() {
		got, err := i.Wait(context.Background(), "getSavedQuery", "getTables")
		assert.NoError(t, err)
		done <- got
	}()

	// unrelated traffic must not satisfy the wait
	request(i, "a", "GET", "http://localhost:8088/static/app.js")
	complete(i, "a", 200)
	request(i, "b", "GET", "http://localhost:8088/superset/tables/1/main/undefined/")
	complete(i, "b", 200)
	request(i, "c", "GET", "http://localhost:8088/savedqueryviewapi/api/get/7")
	complete(i, "c", 200)

	select {
	case got := <-done:
		require.Len(t, got, 2)
		assert.Equal(t, "c", got[0].RequestID)
		assert.Equal(t, "b", got[1].RequestID)
	case <-time.After(5 * time.Second):
		t.Fatal("wait did not return")
	}
}

func TestWaitFailedExchange(t *testing.T) {
	i := newInterceptor(t)
	request(i, "1", "POST", "http://localhost:8088/superset/sql_json/")
	i.Handle(&network.EventLoadingFailed{RequestID: "1", ErrorText: "net::ERR_CONNECTION_RESET"})

	got, err := i.Wait(context.Background(), "sqlLabQuery")
	require.NoError(t, err)
	assert.True(t, got[0].Failed)
	assert.Equal(t, "net::ERR_CONNECTION_RESET", got[0].ErrorText)
}

func TestWaitUnknownAlias(t *testing.T) {
	i := newInterceptor(t)
	_, err := i.Wait(context.Background(), "sqlLabQuery", "nope")
	assert.True(t, errors.IsNotFound(err))
}

func TestRedirectKeepsLatestRequest(t *testing.T) {
	i := newInterceptor(t)
	request(i, "1", "GET", "http://localhost:8088/savedqueryviewapi/api/get/7")
	request(i, "1", "GET", "http://localhost:8088/savedqueryviewapi/api/get/7/")
	complete(i, "1", 200)

	got, err := i.Wait(context.Background(), "getSavedQuery")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8088/savedqueryviewapi/api/get/7/", got[0].URL)
}

func TestArmDiscardsEarlierExchanges(t *testing.T) {
	i := newInterceptor(t)
	// the editor load fetches table metadata, one request still in flight
	request(i, "1", "GET", "http://localhost:8088/superset/tables/1/main/undefined/")
	complete(i, "1", 200)
	request(i, "2", "GET", "http://localhost:8088/superset/tables/1/main/undefined/")
	request(i, "3", "POST", "http://localhost:8088/superset/sql_json/")
	complete(i, "3", 200)

	require.NoError(t, i.Arm("getTables"))
	complete(i, "2", 200)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := i.Wait(ctx, "getTables")
	assert.Equal(t, context.DeadlineExceeded, errors.Cause(err))

	// other aliases are untouched
	got, err := i.Wait(context.Background(), "sqlLabQuery")
	require.NoError(t, err)
	assert.Equal(t, "3", got[0].RequestID)

	request(i, "4", "GET", "http://localhost:8088/superset/tables/1/main/undefined/")
	complete(i, "4", 200)
	got, err = i.Wait(context.Background(), "getTables")
	require.NoError(t, err)
	assert.Equal(t, "4", got[0].RequestID)
}

func TestArmAll(t *testing.T) {
	i := newInterceptor(t)
	request(i, "1", "POST", "http://localhost:8088/superset/sql_json/")
	complete(i, "1", 200)
	request(i, "2", "GET", "http://localhost:8088/savedqueryviewapi/api/get/1")
	complete(i, "2", 200)
	require.NoError(t, i.Arm())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := i.Wait(ctx, "sqlLabQuery")
	assert.Error(t, err)

	assert.True(t, errors.IsNotFound(i.Arm("nope")))
}
