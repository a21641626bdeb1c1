package commands

// MaxReplyLength is Discord's message content limit.
const MaxReplyLength = 2000

const (
	msgUnknownCommand = "❓ Unknown command."
	msgNeedTOS        = "📜 Please read and accept the terms first with `/tos`."
	msgNeedKey        = "❌ You haven't set your API key yet. Use `/setkey` first."
	msgGuildOnly      = "❌ This command only works inside a server."
	msgInternalError  = "⚠️ Something went wrong, please try again later."

	msgSetKeyUsage    = "❌ Usage: `/setkey key:<your limited Torn API key>`"
	msgChangeKeyUsage = "❌ Usage: `/changekey key:<your new Torn API key>`"
	msgKeySaved       = "✅ API key saved successfully!"
	msgKeyChanged     = "🔁 API key updated successfully!"
	msgKeyRemoved     = "🗑️ Your API key has been removed."
	msgNoKeyStored    = "ℹ️ You don't have an API key stored."

	msgWelcomeTOS = "👋 Welcome! Read the terms with `/tos`, then set your Torn API key with `/setkey`."
	msgWelcome    = "👋 Welcome! Set your Torn API key with `/setkey` to get started."

	msgTOSHeader          = "**📜 Terms of Service**\n"
	msgTOSFooter          = "\n\nPress **Accept** below or use `/accept_tos`."
	msgTOSAccepted        = "✅ Terms accepted."
	msgTOSAcceptedSetKey  = "✅ Terms accepted. Now submit your Torn API key."
	msgTOSAlreadyAccepted = "ℹ️ You have already accepted the terms."

	msgProfileFailed = "⚠️ Error fetching data. Is your API key correct?"

	msgItemsFailed = "⚠️ Error fetching inventory."
	msgItemsEmpty  = "📭 Your inventory is empty."
	msgItemsHeader = "**🎒 Your Inventory:**\n"

	msgAdviseFailed = "⚠️ Couldn't fetch market data. Check your API permissions."
	msgAdviseNone   = "📉 No profitable items found right now."
	msgAdviseHeader = "**💸 Top Profitable Items:**\n"

	msgStockFailed = "⚠️ Couldn't fetch stock data. Check your API key permissions."
	msgStockNone   = "📉 No undervalued stocks found at the moment."
	msgStockHeader = "**📉 Stocks Currently Cheap:**\n"

	msgTravelFailed = "⚠️ Couldn't fetch travel market data. Check your API permissions."
	msgTravelNone   = "✈️ No profitable travel items found right now."
	msgTravelHeader = "**✈️ Top Travel Picks:**\n"

	msgTrackingStarted     = "📈 Stock tracking started in this channel. Prices refresh every %s."
	msgTrackingAlready     = "ℹ️ Stock tracking is already running in this channel."
	msgTrackingStopped     = "🛑 Stock tracking stopped."
	msgTrackingNotActive   = "ℹ️ Stock tracking isn't active in this server."
	msgTrackingUnavailable = "⚠️ Stock tracking is not configured on this bot."

	msgInvite            = "🔗 Invite me to your server: %s"
	msgInviteUnavailable = "⚠️ The invite link is not available yet, try again in a moment."
)
