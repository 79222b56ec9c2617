package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// getDeviceInfoTool returns the get_device_info tool definition.
func getDeviceInfoTool() mcp.Tool {
	return mcp.NewTool("get_device_info",
		mcp.WithDescription("Get information about all available devices. Call this first to obtain device ids for switch_control and light_set."),
	)
}

// switchControlTool returns the switch_control tool definition.
func switchControlTool() mcp.Tool {
	return mcp.NewTool("switch_control",
		mcp.WithDescription("Turn switch devices on or off. Returns one status entry per device id."),
		mcp.WithArray("id",
			mcp.Required(),
			mcp.WithStringItems(),
			mcp.Description("Device ids obtained from get_device_info"),
		),
		mcp.WithBoolean("on",
			mcp.Required(),
			mcp.Description("true to turn the devices on, false to turn them off"),
		),
	)
}

// lightSetTool returns the light_set tool definition.
func lightSetTool() mcp.Tool {
	return mcp.NewTool("light_set",
		mcp.WithDescription("Set the brightness percentage of light devices. Returns one status entry per device id."),
		mcp.WithArray("id",
			mcp.Required(),
			mcp.WithStringItems(),
			mcp.Description("Device ids obtained from get_device_info"),
		),
		mcp.WithNumber("brightness",
			mcp.Description("Brightness percentage (0-100); omit or 0 to turn off"),
		),
	)
}
