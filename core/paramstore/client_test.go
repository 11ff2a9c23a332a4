package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	in  *ssm.GetParameterInput
	out *ssm.GetParameterOutput
	err error
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.in = in
	return f.out, f.err
}

func withValue(v *string) *fakeAPI {
	return &fakeAPI{out: &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: aws.String("/menfes/token"), Value: v, Type: types.ParameterTypeSecureString,
	}}}
}

func TestGetParameterDecrypts(t *testing.T) {
	api := withValue(aws.String("123:abc"))
	c, err := New(api)
	require.NoError(t, err)

	v, err := c.GetParameter(context.Background(), " /menfes/token ")
	require.NoError(t, err)
	require.Equal(t, "123:abc", v)
	require.Equal(t, "/menfes/token", aws.ToString(api.in.Name))
	require.True(t, aws.ToBool(api.in.WithDecryption))
}

func TestGetParameterErrors(t *testing.T) {
	ctx := context.Background()

	c, err := New(withValue(nil))
	require.NoError(t, err)
	_, err = c.GetParameter(ctx, "/menfes/token")
	require.ErrorContains(t, err, "has no value")

	boom := errors.New("boom")
	c, err = New(&fakeAPI{err: boom})
	require.NoError(t, err)
	_, err = c.GetParameter(ctx, "/menfes/token")
	require.ErrorIs(t, err, boom)

	_, err = c.GetParameter(ctx, "   ")
	require.ErrorContains(t, err, "name is required")

	_, err = (&Client{}).GetParameter(ctx, "p")
	require.ErrorContains(t, err, "not initialized")

	_, err = New(nil)
	require.ErrorContains(t, err, "must not be nil")
}

func TestResolveToken(t *testing.T) {
	ctx := context.Background()

	c, err := New(withValue(aws.String("  123:abc\n")))
	require.NoError(t, err)
	tok, err := ResolveToken(ctx, c, "/menfes/token")
	require.NoError(t, err)
	require.Equal(t, "123:abc", tok)

	c, err = New(withValue(aws.String("  ")))
	require.NoError(t, err)
	_, err = ResolveToken(ctx, c, "/menfes/token")
	require.ErrorContains(t, err, "is empty")
}
