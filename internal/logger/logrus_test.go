package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestEntry_Fallback(t *testing.T) {
	assert.NotNil(t, Entry(context.Background()))
}

func TestWithRun(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	ctx, e := WithRun(context.Background(), log)
	assert.Same(t, e, Entry(ctx))

	Entry(ctx).Info("hello")
	assert.Contains(t, buf.String(), "run=")
	assert.Contains(t, buf.String(), "msg=hello")
}
