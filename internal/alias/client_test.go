package alias_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"aws-alias/internal/alias"
	"aws-alias/internal/awsaccount"
)

// These tests drive real SDK clients against a fake IAM/STS query endpoint.

func TestNewReconcilerCreatesAliasOverHTTP(t *testing.T) {
	srv := newAWSServer(t)
	cfg := loadTestConfig(t, srv.URL)

	r := alias.New(cfg, zerolog.Nop())
	res, err := r.Reconcile(context.Background(), alias.Desired{Alias: "test-lat", State: alias.StatePresent})
	require.NoError(t, err)
	require.Equal(t, alias.Result{Changed: true, AccountID: "123456789012", Alias: "test-lat"}, res)
	require.Equal(t, []string{"GetCallerIdentity", "ListAccountAliases", "CreateAccountAlias"}, srv.actions())
	require.Equal(t, "test-lat", srv.current())
}

func TestNewReconcilerDeletesAliasOverHTTP(t *testing.T) {
	srv := newAWSServer(t)
	srv.alias = "test-lat"
	cfg := loadTestConfig(t, srv.URL)

	r := alias.New(cfg, zerolog.Nop())
	res, err := r.Reconcile(context.Background(), alias.Desired{Alias: "test-lat", State: alias.StateAbsent})
	require.NoError(t, err)
	require.Equal(t, alias.Result{Changed: true, AccountID: "123456789012", Alias: ""}, res)
	require.Equal(t, []string{"GetCallerIdentity", "ListAccountAliases", "DeleteAccountAlias", "ListAccountAliases"}, srv.actions())
}

func TestNewReconcilerKeepsServiceMessage(t *testing.T) {
	srv := newAWSServer(t)
	srv.createStatus = http.StatusConflict
	cfg := loadTestConfig(t, srv.URL)

	r := alias.New(cfg, zerolog.Nop())
	_, err := r.Reconcile(context.Background(), alias.Desired{Alias: "taken", State: alias.StatePresent})

	var rce *alias.RemoteCallError
	require.ErrorAs(t, err, &rce)
	require.Equal(t, "EntityAlreadyExists", rce.Code())
	require.Contains(t, err.Error(), "The account alias taken already exists.")
	require.True(t, strings.HasPrefix(err.Error(), "operation error IAM: CreateAccountAlias"), err.Error())
	require.Equal(t, rce.Err.Error(), err.Error())
}

type awsServer struct {
	*httptest.Server

	mu           sync.Mutex
	alias        string
	calls        []string
	createStatus int
}

func newAWSServer(t *testing.T) *awsServer {
	t.Helper()

	s := &awsServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *awsServer) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	action := r.Form.Get("Action")
	s.calls = append(s.calls, action)

	switch action {
	case "GetCallerIdentity":
		writeXML(w, http.StatusOK, `<GetCallerIdentityResponse xmlns="https://sts.amazonaws.com/doc/2011-06-15/">
  <GetCallerIdentityResult>
    <Account>123456789012</Account>
    <Arn>arn:aws:iam::123456789012:user/test_lat</Arn>
    <UserId>ABCDEF1234567890</UserId>
  </GetCallerIdentityResult>
</GetCallerIdentityResponse>`)
	case "ListAccountAliases":
		members := ""
		if s.alias != "" {
			members = "<member>" + s.alias + "</member>"
		}
		writeXML(w, http.StatusOK, fmt.Sprintf(`<ListAccountAliasesResponse xmlns="https://iam.amazonaws.com/doc/2010-05-08/">
  <ListAccountAliasesResult>
    <IsTruncated>false</IsTruncated>
    <AccountAliases>%s</AccountAliases>
  </ListAccountAliasesResult>
</ListAccountAliasesResponse>`, members))
	case "CreateAccountAlias":
		name := r.Form.Get("AccountAlias")
		if s.createStatus != 0 {
			writeXML(w, s.createStatus, fmt.Sprintf(`<ErrorResponse xmlns="https://iam.amazonaws.com/doc/2010-05-08/">
  <Error>
    <Type>Sender</Type>
    <Code>EntityAlreadyExists</Code>
    <Message>The account alias %s already exists.</Message>
  </Error>
  <RequestId>test-request</RequestId>
</ErrorResponse>`, name))
			return
		}
		s.alias = name
		writeXML(w, http.StatusOK, `<CreateAccountAliasResponse xmlns="https://iam.amazonaws.com/doc/2010-05-08/"></CreateAccountAliasResponse>`)
	case "DeleteAccountAlias":
		s.alias = ""
		writeXML(w, http.StatusOK, `<DeleteAccountAliasResponse xmlns="https://iam.amazonaws.com/doc/2010-05-08/"></DeleteAccountAliasResponse>`)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (s *awsServer) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *awsServer) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alias
}

func writeXML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, strings.TrimSpace(body))
}

func loadTestConfig(t *testing.T, endpoint string) aws.Config {
	t.Helper()
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	t.Setenv("AWS_ENDPOINT_URL_IAM", endpoint)
	t.Setenv("AWS_ENDPOINT_URL_STS", endpoint)

	cfg, err := awsaccount.LoadConfig(context.Background(), "eu-west-1", awsaccount.Credentials{
		AccessKey: "lat-key",
		SecretKey: "lat-secret",
	})
	require.NoError(t, err)
	return cfg
}
