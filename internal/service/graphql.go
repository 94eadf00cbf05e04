package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	graphql "github.com/hasura/go-graphql-client"

	apperrors "github.com/spec-kit/recommendation-console/pkg/util"
)

// TokenSource supplies the bearer token for outbound calls.
type TokenSource interface {
	Token() (string, bool)
}

// GraphQLError carries the messages of a GraphQL "errors" array.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// clientErrorCodes are the extension codes the client stamps on failures
// that never reached a GraphQL resolver.
var clientErrorCodes = map[string]bool{
	"request_error":        true,
	"json_encode_error":    true,
	"json_decode_error":    true,
	"graphql_encode_error": true,
	"graphql_decode_error": true,
}

// graphqlClient posts queries to a single GraphQL endpoint.
type graphqlClient struct {
	client  *graphql.Client
	timeout time.Duration
}

func newGraphQLClient(endpoint string, httpClient *http.Client, timeout time.Duration, tokens TokenSource) *graphqlClient {
	client := graphql.NewClient(endpoint, httpClient).
		WithRequestModifier(func(req *http.Request) {
			req.Header.Set("Accept", "application/json")
			req.Header.Set("Authorization", AuthorizationHeader(tokens))
		})
	return &graphqlClient{client: client, timeout: timeout}
}

// AuthorizationHeader is "Bearer <token>" when a token is present, else "".
func AuthorizationHeader(tokens TokenSource) string {
	if tokens == nil {
		return ""
	}
	if token, ok := tokens.Token(); ok {
		return "Bearer " + token
	}
	return ""
}

func (g *graphqlClient) do(ctx context.Context, query string, variables map[string]any, out any) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	data, err := g.client.ExecRaw(ctx, query, variables)
	if err != nil {
		return translateGraphQLError(err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewUpstreamUnavailable("graphql data has unexpected shape", err)
	}
	return nil
}

// translateGraphQLError keeps resolver messages as a GraphQLError and turns
// transport and decoding failures into an upstream error.
func translateGraphQLError(err error) error {
	var errs graphql.Errors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return apperrors.NewUpstreamUnavailable("graphql endpoint unreachable", err)
	}
	gqlErr := &GraphQLError{}
	for _, e := range errs {
		if code, _ := e.Extensions["code"].(string); clientErrorCodes[code] {
			return apperrors.NewUpstreamUnavailable("graphql request failed: "+e.Message, err)
		}
		gqlErr.Messages = append(gqlErr.Messages, e.Message)
	}
	return gqlErr
}
