package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobiletools/catalog-cli/internal/model"
)

func newDeviceFlagCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addDeviceFlags(cmd)
	return cmd
}

func TestDeviceInputFromFlags_OverlaysChangedOnly(t *testing.T) {
	cmd := newDeviceFlagCmd()
	require.NoError(t, cmd.Flags().Set("ram", "12GB"))
	require.NoError(t, cmd.Flags().Set("year", "2025"))

	ram := "8GB"
	screen := "6.7 inches"
	base := model.DeviceInput{
		Name:       "X1",
		CompanyID:  1,
		RAM:        &ram,
		ScreenSize: &screen,
	}

	in, err := deviceInputFromFlags(cmd, base)
	require.NoError(t, err)

	assert.Equal(t, "X1", in.Name)
	require.NotNil(t, in.RAM)
	assert.Equal(t, "12GB", *in.RAM)
	// Untouched flags leave base values alone.
	require.NotNil(t, in.ScreenSize)
	assert.Equal(t, "6.7 inches", *in.ScreenSize)
	require.NotNil(t, in.LaunchedYear)
	assert.Equal(t, int64(2025), *in.LaunchedYear)
}

func TestDeviceInputFromFlags_EmptyStringClears(t *testing.T) {
	cmd := newDeviceFlagCmd()
	require.NoError(t, cmd.Flags().Set("processor", ""))
	require.NoError(t, cmd.Flags().Set("year", "0"))

	proc := "Octa X1"
	year := int64(2024)
	base := model.DeviceInput{
		Name:          "X1",
		CompanyID:     1,
		ProcessorName: &proc,
		LaunchedYear:  &year,
	}

	in, err := deviceInputFromFlags(cmd, base)
	require.NoError(t, err)
	assert.Nil(t, in.ProcessorName)
	assert.Nil(t, in.LaunchedYear)
}

func TestDeviceInputFromFlags_NameAndCompany(t *testing.T) {
	cmd := newDeviceFlagCmd()
	require.NoError(t, cmd.Flags().Set("name", "X1 Ultra"))
	require.NoError(t, cmd.Flags().Set("company", "7"))

	in, err := deviceInputFromFlags(cmd, model.DeviceInput{Name: "X1", CompanyID: 1})
	require.NoError(t, err)
	assert.Equal(t, "X1 Ultra", in.Name)
	assert.Equal(t, int64(7), in.CompanyID)
}
