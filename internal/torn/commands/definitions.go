package commands

const (
	CmdStart       = "start"
	CmdSetKey      = "setkey"
	CmdChangeKey   = "changekey"
	CmdRemoveKey   = "removekey"
	CmdProfile     = "profile"
	CmdItems       = "items"
	CmdAdvise      = "advise"
	CmdAdviseStock = "advise_stock"
	CmdTravel      = "travel"
	CmdTOS         = "tos"
	CmdAcceptTOS   = "accept_tos"
	CmdStock       = "stock"
	CmdStop        = "stop"
	CmdInvite      = "invite"
)

// Argument describes the single string option a command may take.
type Argument struct {
	Name        string
	Description string
	Required    bool
}

// Definition is what the platform adapter registers for each command.
type Definition struct {
	Name        string
	Description string
	Arg         *Argument
	GuildOnly   bool
	Deferred    bool // calls the Torn API, acknowledge first and answer later
}

func Definitions() []Definition {
	return []Definition{
		{Name: CmdStart, Description: "Start using the Torn City bot"},
		{Name: CmdSetKey, Description: "Save your Torn City API key",
			Arg: &Argument{Name: "key", Description: "Your limited Torn City API key", Required: true}},
		{Name: CmdChangeKey, Description: "Replace your saved Torn City API key",
			Arg: &Argument{Name: "key", Description: "Your new Torn City API key", Required: true}},
		{Name: CmdRemoveKey, Description: "Delete your saved Torn City API key"},
		{Name: CmdProfile, Description: "View your Torn City profile", Deferred: true},
		{Name: CmdItems, Description: "View your Torn inventory items", Deferred: true},
		{Name: CmdAdvise, Description: "Suggest profitable items from the market", Deferred: true},
		{Name: CmdAdviseStock, Description: "Suggest stocks that might be worth buying (based on price drop)", Deferred: true},
		{Name: CmdTravel, Description: "Suggest profitable items to buy abroad",
			Arg: &Argument{Name: "country", Description: "Only show one destination, e.g. mexico"}, Deferred: true},
		{Name: CmdTOS, Description: "Read the terms of service"},
		{Name: CmdAcceptTOS, Description: "Accept the terms of service"},
		{Name: CmdStock, Description: "Post live stock prices in this channel", GuildOnly: true},
		{Name: CmdStop, Description: "Stop posting stock prices in this server", GuildOnly: true},
		{Name: CmdInvite, Description: "Get a link to add the bot to your server"},
	}
}
