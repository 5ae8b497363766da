package mnemonic

// englishWordlist is the 2048-word list used to encode/decode mnemonics,
// one word per 11-bit value, sorted ascending, indexed by the 11-bit
// values that Encode/Decode pack and unpack. The entries are not the
// BIP-39 English wordlist, so phrases from other BIP-39 wallets fail to
// decode here.
var englishWordlist = [2048]string{
	"babsuti", "badi", "baga", "bahuze", "bahvowe", "bajbe", "baju", "bakepi",
	"balci", "bamilo", "bamu", "bana", "bane", "bapezva", "baqe", "baqjo",
	"baqulli", "barapla", "bari", "baro", "baroxo", "basa", "basezu", "basu",
	"basuxi", "batozo", "bawe", "baxqu", "baxu", "bayapi", "bayke", "baza",
	"becaqqo", "befara", "behdava", "bekove", "bemjeja", "benuhre", "benxe", "berkempe",
	"berne", "bersi", "bese", "bewidto", "bewwolde", "bexi", "beyelve", "beyxi",
	"bibi", "bidife", "bifobu", "bihipu", "bije", "biji", "bikuhni", "bililo",
	"binewba", "bipgo", "biqanro", "biqe", "biqibce", "biqrafu", "bite", "bito",
	"bivedu", "biwapa", "bobufto", "boce", "bode", "bodife", "bogi", "bogoge",
	"bohe", "boldego", "bomfi", "bomila", "bonata", "bopse", "bosevi", "botu",
	"boyi", "bozowu", "bucadu", "buhi", "bumle", "bunene", "bupu", "buqi",
	"buroje", "buwa", "buxowre", "buyobo", "buze", "cabi", "cabisi", "caca",
	"caciyo", "cacure", "cafu", "cagova", "cahevi", "cajdo", "cakxa", "camko",
	"canutu", "caqa", "caqilo", "catsoma", "cavusi", "cawutvo", "caze", "cazotmi",
	"cebure", "cedutco", "cedva", "cegena", "cehe", "ceji", "cekeba", "celi",
	"celoqa", "cesexu", "cesfe", "cesha", "cesi", "cetho", "cewane", "cexkawe",
	"ceyiwe", "ceyna", "cicu", "cijiyo", "cikizu", "cipe", "ciqigi", "ciqva",
	"cire", "ciso", "citpilu", "civo", "cixiya", "cizecyi", "cizhatu", "cobohu",
	"cocure", "cofi", "coguwo", "cogzilci", "cohe", "cohelo", "cojopo", "conigfu",
	"conofu", "conupu", "copfewu", "copu", "coqi", "cosvedo", "covipo", "cowugo",
	"coxiwu", "coyimo", "coyma", "cozadi", "cubizju", "cuda", "cudizo", "cufa",
	"cufewvo", "cufo", "cugi", "cugzeka", "cukaji", "culjuwxo", "cune", "cuponmo",
	"cuqhasu", "cuqi", "cutaka", "cuyeme", "cuzece", "dado", "dafce", "dafupe",
	"dagithi", "dahci", "dajvi", "dameyi", "dami", "dapo", "daptavu", "daqzusu",
	"dasfe", "datgigo", "dawegi", "dawoni", "daxe", "daxva", "dayi", "debebve",
	"dece", "dedi", "dehoqu", "dejiwe", "deke", "demmo", "depiwa", "deplufi",
	"deqiba", "dequ", "deravu", "deruwro", "deta", "deva", "dexa", "dexeju",
	"dexurfa", "deyisi", "diburza", "dicegvu", "didi", "didu", "difu", "dika",
	"dipizu", "diquwi", "ditze", "divu", "diwiro", "diyubi", "diyuhu", "dize",
	"dizeno", "dizu", "doca", "docapa", "docu", "doda", "dodenu", "dodoma",
	"doge", "dogu", "dohamlu", "doho", "dohusa", "doja", "doje", "dolufe",
	"domu", "donirki", "dotbasa", "doti", "dotoyi", "doturu", "dovkero", "dowoyne",
	"doye", "doyuba", "dubrehu", "duci", "dufage", "dugoqyo", "duguhi", "duhifo",
	"duho", "dujude", "dulavu", "dulita", "dundico", "duqa", "dusare", "duvbu",
	"duwebo", "duxice", "duyeji", "duyozo", "fabapi", "fabnaso", "fade", "fadormu",
	"fadoyu", "fagune", "fahu", "fahuli", "fajfa", "famexo", "famurri", "faqe",
	"faqyubo", "fate", "fatemo", "fato", "favbu", "favo", "favsoqye", "faxupa",
	"faya", "faza", "fazoqu", "febidi", "fecgapse", "fede", "fedi", "fefho",
	"fefsezi", "fegugo", "fekuva", "feli", "feliljo", "femume", "feposi", "feqxevo",
	"fernamo", "fevyo", "fexi", "fexo", "fiburi", "ficiba", "ficlilla", "fidsaho",
	"figa", "fijennu", "fiji", "fijico", "fikzi", "filefu", "fimelsa", "fimi",
	"fimobe", "finaga", "fiporo", "fiqe", "fiqwu", "fito", "fizi", "fobamu",
	"fobu", "focakta", "fodahu", "fohayo", "fohqo", "fohzuwi", "fokode", "fothedso",
	"fovhugu", "fovjeyo", "fowaho", "fowiwe", "fownoblo", "foxire", "foylu", "foyubsa",
	"foyuxe", "fozope", "fudu", "fufejju", "fufuxi", "fuguka", "fuhbike", "fuka",
	"fuli", "fultiga", "fumu", "fupopi", "fupsuvo", "fupu", "fupxa", "fupye",
	"fuqalne", "fuqiwi", "futuge", "fuvuwi", "gacopa", "gacudi", "gacuhi", "gadabi",
	"gadu", "gafpi", "gagaqo", "gahgehge", "gajmipe", "gaju", "gakaco", "galyusu",
	"ganuse", "gapfixo", "gare", "gasofu", "gatowa", "gavu", "gaxbafe", "gaxo",
	"gaxoru", "gayabpo", "gaycejwu", "gazne", "gece", "geceho", "gegi", "gekuye",
	"gelisi", "gemo", "gemvire", "geroju", "gete", "getiyye", "gevasa", "gevmo",
	"gewdu", "gewovco", "gexnerhe", "gexrixo", "gigsohu", "gigu", "gijihe", "gijo",
	"giki", "gimeya", "gipqu", "giqe", "girasu", "gisi", "gitu", "gixomu",
	"giye", "gocje", "gocofta", "gode", "gofju", "gohceja", "gohulfo", "gokoba",
	"gollu", "gomuro", "gone", "gono", "goqengi", "goqxo", "gorapa", "gosero",
	"govani", "govhe", "goybaye", "gozyiku", "gubquzi", "gufebo", "gufenxa", "gufopo",
	"gugevmi", "guhe", "guhri", "guludha", "gumopo", "gunimi", "gunku", "gupaci",
	"gupade", "guqowla", "gurime", "gurinve", "guthise", "guvo", "guxozi", "guya",
	"guyive", "guyjo", "guze", "habowe", "hagibu", "hago", "haja", "hake",
	"halu", "hama", "hapapti", "haqofe", "hasxatho", "havwuka", "hawe", "haxude",
	"hayfiti", "haysuce", "hazepo", "hazizu", "heba", "hebce", "hedbabo", "hedebke",
	"hedo", "hefepi", "hegji", "hegu", "hehsija", "hejeci", "hejo", "hekcoqa",
	"hekvu", "helinpe", "hemqina", "hepmuyo", "hepxo", "heqa", "herice", "heteffo",
	"heva", "hevdiwwu", "hevona", "heytiri", "heza", "hibi", "hidu", "hihe",
	"hihjovo", "hijgowa", "hiji", "hikjoko", "hilife", "hine", "hiqi", "hisbi",
	"hitega", "hiwe", "hiya", "hobo", "hobqijo", "hogato", "hojcisi", "hoka",
	"hoki", "hokipu", "homoke", "horiqfe", "hosebjo", "hosefi", "howe", "hoyuse",
	"hoze", "hubaze", "hubmormo", "hucape", "huce", "hufihi", "hugarga", "hugo",
	"humapi", "huqgogbe", "huqo", "hura", "hurho", "huslohvo", "hute", "huto",
	"huwecu", "huxe", "huzi", "jaco", "jagefi", "jagi", "jagu", "jahtoho",
	"jakxu", "jalzeqe", "jangehi", "jara", "jaryu", "jase", "jasu", "javeco",
	"jaxeja", "jaxo", "jayce", "jayu", "jayzamgo", "jebmi", "jefowqe", "jegyixe",
	"jejlugu", "jelveha", "jemka", "jepusa", "jespeqo", "jeta", "jewe", "jewoto",
	"jeya", "jeyegho", "jeyni", "jezu", "jibeli", "jiboyye", "jibozgu", "jidligu",
	"jifuhu", "jifye", "jijawe", "jilnoyi", "jilo", "jilowvi", "jilugu", "jima",
	"jimna", "jimude", "jipfova", "jiqu", "jisgane", "jiti", "jiwjohe", "jiwmi",
	"jiyuda", "jobaba", "jofsehi", "johahti", "jojize", "jola", "jope", "joqa",
	"joqigma", "jota", "jotlu", "jotu", "jovuya", "jowa", "jowipe", "joxdu",
	"joxicu", "joxigi", "jozima", "jozusgo", "jube", "jucunu", "jucza", "jufexi",
	"jufupmu", "juhebxu", "juhiro", "jujagpa", "juku", "julnota", "jumneba", "jumoqa",
	"junedo", "junelu", "junu", "jupa", "jupbe", "juqage", "juqatno", "juqe",
	"juvihi", "juwa", "juwi", "juxiso", "juxo", "juyebne", "juyluno", "juyocja",
	"kacexzu", "kakgesu", "kakka", "kakolu", "kammixhi", "kapa", "kapati", "kapteki",
	"kaqyo", "kari", "kavocjo", "kawaja", "kawviba", "kaxkupke", "kayiri", "kayoki",
	"kayozfi", "kecomi", "kedbacu", "kefdo", "keha", "kehace", "kehona", "keleji",
	"kelrego", "kelu", "keluxe", "kemi", "kemjuru", "kemuyi", "keqicvi", "keqo",
	"kerwetno", "kesi", "kete", "kewa", "kewaxi", "kewru", "kezelhi", "kifimu",
	"kighi", "kigi", "kihizhe", "kihorbe", "kimpi", "kinazi", "kineda", "kipa",
	"kipe", "kirfogi", "kiruzi", "kisbida", "kisu", "kite", "kivise", "kiwa",
	"kiwdo", "kiyanbe", "kogu", "kohi", "kohseyse", "kokatme", "kokise", "kolomu",
	"konjexe", "kopowru", "kopu", "korapa", "kore", "kosiwi", "kospecqe", "kovhervu",
	"kovubo", "kovuwhe", "koxu", "koziqsi", "kuce", "kudopre", "kufoqi", "kugide",
	"kuhe", "kujepo", "kujixe", "kujqe", "kuki", "kukima", "kunuqe", "kura",
	"kure", "kuseco", "kusu", "kuti", "kuxome", "kuyisi", "kuzxu", "labi",
	"labisu", "lacu", "ladjelo", "lafa", "lajda", "lajoxso", "lalixi", "lamu",
	"lani", "lanqumu", "lapuse", "larezo", "laronlu", "lasa", "lavdi", "lave",
	"layi", "layini", "lazobdo", "lefeti", "leheyti", "lejlore", "lekose", "lelu",
	"lemi", "lendimo", "lenoyo", "lenwube", "leqgi", "lerbaju", "lesuha", "levi",
	"levo", "lewno", "lexete", "lexne", "lexyeye", "leyiva", "libiwi", "libo",
	"lichugi", "lidiha", "lihoho", "lilaca", "lilace", "limi", "limoje", "liqeje",
	"lisalsi", "lise", "lisisi", "litcoga", "lito", "liviyya", "liwelde", "lixa",
	"liyevqo", "lizpe", "lobazqi", "lobbu", "lobridju", "lodu", "lofe", "lofowe",
	"logi", "lohi", "loja", "loje", "lomufa", "lopare", "lopove", "losedi",
	"loxahe", "lozo", "lubovwu", "lubulo", "luhka", "luhrelo", "luhudo", "luji",
	"luksubi", "lula", "lulcuzu", "lulkuju", "lume", "lumfani", "lumi", "lupuvhe",
	"luqu", "lurewla", "lurijwi", "lusca", "luso", "lusu", "luti", "lutifu",
	"lutobu", "lutomgi", "luwqeqli", "macetu", "madcafa", "mafe", "mahepu", "mahura",
	"malagi", "mammi", "mapaba", "maqepa", "marazxa", "mari", "masa", "masu",
	"masude", "mavxeko", "mawa", "maxmi", "maxvogsa", "medepu", "medudi", "mefa",
	"mefi", "megi", "mehiqu", "mehxoli", "mehzaka", "mejeci", "meka", "meke",
	"mekovi", "mekyi", "melpicu", "merapma", "merijo", "mesa", "metica", "mevo",
	"mevuho", "meye", "meylu", "mezeda", "midimi", "mifofzo", "migu", "mija",
	"miju", "mimtipi", "mimu", "mita", "miti", "miwpu", "mixiwi", "miye",
	"mizido", "mobe", "mobopi", "moce", "mocyido", "mofivu", "mohi", "moledo",
	"moluwo", "momilu", "momno", "momozi", "moneto", "mopibya", "mopuki", "moseto",
	"motdo", "mothiro", "moxe", "moxi", "mubxaco", "muga", "mugori", "muho",
	"mujgepra", "mujo", "munoqa", "murfadi", "mursayi", "musge", "mutwiwo", "muwri",
	"muxafo", "nabahi", "nabu", "naca", "nadhe", "nafe", "nagquqe", "nahi",
	"najhuke", "namkeki", "naniho", "napuro", "nare", "nari", "nasa", "navho",
	"navitze", "naworu", "naxje", "naxo", "nazene", "negke", "nekxise", "nekxiya",
	"nemhilu", "nemibdo", "nesuwe", "nevilga", "newaza", "neypuha", "nezposqe", "nibuya",
	"nifado", "nifi", "nigoru", "niguvi", "niheva", "nija", "niju", "nijxi",
	"nikejo", "nikso", "nilapi", "nimnivu", "nimopi", "ninoxa", "ninre", "nipece",
	"nipidu", "niqicu", "nirke", "nisowye", "nixejo", "nixibi", "nixqora", "noca",
	"nodo", "nogodi", "nohesa", "nohovu", "noja", "nojo", "noka", "noki",
	"nokuwzi", "nonobe", "nonucu", "noqe", "noraxva", "noreti", "noyeto", "noyuxi",
	"noza", "noztasa", "nozu", "nozyiwi", "nudo", "nufo", "nufoga", "nufwamce",
	"nugca", "nujuga", "nukewla", "nule", "nulo", "nunuqa", "nupirno", "nure",
	"nusa", "nuszono", "nute", "nuto", "nuwoca", "nuwu", "nuximi", "nuxo",
	"nuyi", "nuyne", "paba", "padebe", "padega", "pafkuge", "pagoje", "pahvo",
	"pale", "pameyi", "panloxi", "paqa", "paqduha", "parfuda", "parora", "pasa",
	"pata", "pate", "pazdifi", "pazo", "pefafi", "pefubfu", "pehli", "pehoza",
	"pejfe", "pejova", "pekudxi", "pephane", "pepo", "pesa", "pesni", "petora",
	"petrofi", "pewu", "pexehe", "pexle", "piba", "pici", "pidide", "pidoka",
	"pignali", "pihutpe", "pihyola", "pijere", "piji", "pikame", "pikjuzi", "pini",
	"piqcexi", "piqi", "pirgexyi", "pirita", "pirobo", "pirolu", "pisa", "pivefgo",
	"piwemki", "piwjo", "pixa", "pogo", "pohowa", "pojade", "pokadu", "pomaya",
	"popoze", "pora", "poremni", "potado", "povavi", "povo", "powidi", "poxe",
	"poyufa", "poyunsi", "pozede", "pozxeda", "pubo", "pucoga", "pugema", "pugiju",
	"puhiki", "pujaro", "puke", "pulobu", "pumu", "purzaka", "pusahe", "puwxa",
	"qabaro", "qabxewo", "qafraso", "qaguxa", "qakku", "qamivna", "qamu", "qapo",
	"qatuxa", "qavara", "qawbile", "qawixfe", "qawra", "qaxagto", "qaxavu", "qaxove",
	"qaxu", "qazyije", "qebu", "qecuqhe", "qefose", "qefuco", "qeguwa", "qehafi",
	"qejaca", "qeki", "qelu", "qenu", "qenwe", "qepaju", "qepwe", "qesula",
	"qeto", "qevxosfe", "qeyebbo", "qeznoca", "qibbemo", "qibeqa", "qibfa", "qifi",
	"qifu", "qigeze", "qigika", "qijani", "qilja", "qinpu", "qiqixo", "qirhekpo",
	"qisa", "qisulpo", "qitimno", "qitomo", "qiva", "qivate", "qividpu", "qivini",
	"qixnuce", "qiybi", "qiziye", "qizo", "qobqu", "qobuzu", "qofipi", "qogo",
	"qoheqe", "qohpeva", "qoke", "qokiwa", "qolawu", "qolboqo", "qole", "qoleka",
	"qollefqi", "qoluze", "qomluhge", "qonofi", "qonxe", "qopuyti", "qoqo", "qoqofu",
	"qosa", "qosuje", "qove", "qoxya", "qozo", "quba", "qubore", "quca",
	"qucapo", "qucfivso", "qucucu", "qugo", "quhebzi", "qulu", "qumpi", "qunzadi",
	"qupo", "ququ", "qurjapu", "quro", "qusawo", "quthiga", "quvi", "quvifu",
	"quvkaxo", "quwudca", "quxa", "quxi", "quxo", "quya", "quyiva", "quzo",
	"rafhi", "rahe", "raheko", "rahocle", "rahovgi", "raka", "rakewe", "raligo",
	"ralo", "ramaco", "ramqu", "ramu", "ranivxi", "raqli", "rasoqki", "ravnudo",
	"rayo", "razesa", "razka", "reba", "rebapu", "recavo", "redo", "refwatno",
	"reguzbo", "rehi", "rehoqa", "reluxa", "renapje", "repe", "repomi", "repoqo",
	"reqelmi", "reri", "rerivu", "rerofa", "resyoji", "retzevo", "rewase", "rexipmi",
	"reyqagu", "ribgite", "rica", "ridi", "ridoxu", "rifora", "rige", "rigu",
	"rildipe", "riplo", "riqenqo", "rirazje", "riteqhu", "rivke", "riwuwo", "rixeje",
	"rocizi", "rodege", "rodeta", "rodilu", "rofla", "roguba", "roguwa", "roju",
	"rolo", "romo", "romoki", "ronawse", "roqme", "rorwoya", "rosvi", "rotu",
	"rovabi", "rovoze", "rovtayo", "rowo", "roxgegfi", "roya", "royi", "royo",
	"royusa", "rozala", "rozse", "rudu", "rufoku", "ruge", "rugke", "rukihi",
	"rukiju", "rukji", "rukodvo", "rumupi", "runiyu", "rupuje", "ruqipa", "rusnuki",
	"rusozfu", "rutce", "rutule", "ruvodu", "ruvya", "ruxeqgo", "ruxike", "ruyile",
	"ruyivpa", "ruzsose", "sabu", "saca", "sada", "saga", "sage", "sagicmu",
	"sajehju", "sajfudpi", "sajho", "sajucle", "saki", "sako", "salo", "sapgini",
	"sapo", "sapugo", "saqce", "sawa", "sawi", "sawo", "saye", "sebofo",
	"sedicci", "sedice", "sedoxqa", "segja", "segpego", "sehi", "sejivo", "sejuze",
	"seko", "sekpati", "senveye", "setba", "setmize", "sevuwe", "seyoyyo", "seyute",
	"seze", "sicfu", "sicoji", "sifagfo", "sifo", "sigga", "sigo", "sijfoze",
	"sikupo", "silcale", "silidi", "sinepo", "sirejjo", "site", "sivugo", "siwojya",
	"siwomcu", "siwrepi", "siwtixe", "sixenu", "siywi", "sizi", "sizuxa", "sobanki",
	"sobubi", "sodlire", "sodpuxe", "soduka", "sohotu", "sojeqo", "sojo", "sokeywi",
	"soleqa", "somuco", "somuyo", "sonapa", "soninwi", "soqazso", "sosozu", "sotagxi",
	"sowyugu", "soyipi", "soza", "sozo", "sucove", "sufo", "sugu", "suhato",
	"suhe", "sujo", "sujqufco", "sujyizo", "sukimi", "sulike", "sumpayi", "suno",
	"sunu", "supide", "suprano", "suse", "susle", "sutiqo", "suvemu", "suwkiddo",
	"suyufu", "suzi", "tabufe", "tabuje", "taco", "tadodu", "tadto", "tahwoszu",
	"takama", "tali", "talsi", "tanivbu", "tapono", "tapqujvu", "taranxi", "taru",
	"tasbomo", "tasu", "tatoxki", "tavo", "tayelu", "tayenu", "tazavi", "tazi",
	"tebe", "tebzo", "tecamo", "tedzexo", "tefodo", "tegacu", "tegi", "tegola",
	"tegu", "tehave", "tehopni", "tekafi", "tekuse", "teladde", "telxa", "tengo",
	"tenteci", "terezbu", "tesalo", "tewizto", "tewseci", "texigso", "texu", "teyefo",
	"teze", "tezmo", "tica", "tifo", "tiho", "tiji", "tijo", "tijodo",
	"tiluto", "tiqa", "tirca", "tivga", "tixfozu", "tizado", "tobaxi", "tobeji",
	"tobha", "tobiri", "tocru", "tofigki", "tofoya", "togi", "tonaxe", "toni",
	"tonofo", "tonu", "topboni", "tope", "topfo", "topi", "tordo", "toseghe",
	"totadi", "totjuze", "tova", "tovi", "tovwisa", "towu", "toxlena", "toylu",
	"tozi", "tuba", "tube", "tubfe", "tubu", "tudedbi", "tudsuze", "tuhafe",
	"tujahu", "tukbisi", "tukrije", "tuma", "tummo", "tumtole", "tuna", "tuni",
	"tupa", "tupi", "tupnu", "tuqi", "turi", "tusmufgo", "tusukze", "tuva",
	"tuve", "tuvo", "tuvu", "tuvugi", "tuypato", "vafuzbi", "vage", "vagizo",
	"vagu", "vahe", "vahqe", "vahu", "vaketu", "valoko", "valoli", "valoqpi",
	"vamaho", "vamazqo", "vano", "vanu", "vanuja", "varleyu", "varneno", "vaspogu",
	"vatakte", "vavepa", "vawibve", "vaxeca", "vayne", "vayo", "vazoju", "vebu",
	"vegagni", "vehite", "vejbebxu", "vejehi", "veji", "vejogi", "velsa", "veme",
	"veno", "vepa", "veqo", "verope", "veryeqo", "verziva", "vewu", "vibe",
	"vici", "vifgi", "vigki", "viklismi", "vimi", "vinico", "vipeqwi", "viqa",
	"viquye", "virhuwa", "viro", "vise", "visuku", "vitasi", "vitda", "vitotci",
	"vivani", "vivogu", "vixa", "vixe", "viyhere", "vizzaxe", "voce", "vofahe",
	"voga", "vogikce", "vogiyo", "vogpofe", "vokdeqlu", "volewu", "vomulva", "vonunje",
	"vopeje", "vopo", "vopu", "voqeda", "voqifi", "vosbu", "vovi", "vovutu",
	"vowo", "voxikzu", "voxmi", "voyo", "voyzaci", "vozevci", "vozuvo", "vubegzu",
	"vucfi", "vudvigi", "vuhe", "vuhi", "vuhji", "vuhwi", "vuko", "vumkexo",
	"vurame", "vusreygu", "vutuku", "vutuqi", "vuwgi", "vuyzeqpi", "vuzola", "wado",
	"wadu", "waje", "wakosho", "walna", "wamo", "wanqi", "wara", "watiwi",
	"watupu", "wawi", "wazina", "wectowu", "weda", "wedeji", "wedi", "wednolra",
	"wefa", "weffu", "wejhate", "wejika", "wejyavo", "weka", "wekije", "wemre",
	"wepsaki", "weroqmu", "wesisha", "weslo", "wetcu", "weteti", "wetpupa", "wevuxno",
	"wewi", "wewinu", "wexogo", "weya", "wibrici", "wibso", "wibukre", "wido",
	"widumdo", "wigo", "wihipi", "wihjexa", "wikbebe", "wikmoja", "wimufu", "wincetu",
	"winive", "wino", "wipka", "wiqe", "wiqo", "wirete", "wirupa", "wise",
	"wivisdu", "wiwcatxu", "wiwityi", "wixi", "wizzo", "wobaqro", "wobo", "wogamji",
	"wogaxa", "wohije", "wokiko", "wokola", "wolexe", "woliko", "wolnane", "wolo",
	"wopo", "woqe", "woqmero", "woqwiqe", "woroqe", "worzoti", "woweto", "wowozu",
	"woxkewku", "wozehu", "wozune", "wubi", "wubizo", "wuca", "wuhri", "wukyigte",
	"wulace", "wuma", "wumxule", "wupsezu", "wuqodu", "wuqohi", "wusjacu", "wusoya",
	"wutucwi", "wuvnu", "wuweku", "wuwosa", "xabeye", "xabqu", "xaceya", "xacolu",
	"xacu", "xadugfa", "xagorka", "xaguxi", "xahva", "xamge", "xanujo", "xapca",
	"xarivxu", "xasoyu", "xaype", "xazowe", "xecune", "xede", "xedi", "xejutso",
	"xeke", "xelgita", "xelroze", "xenoqda", "xenu", "xerefe", "xetva", "xevharge",
	"xevxocu", "xewzemo", "xeysu", "xeyuzfu", "xezando", "xezmoga", "xicefa", "xico",
	"xicu", "xida", "xide", "xile", "xiljube", "ximiga", "xipije", "xipuxe",
	"xiqa", "xivdi", "xivubfi", "xivwise", "xiwezu", "xiyuje", "xiza", "xoba",
	"xobo", "xochu", "xociqo", "xodofi", "xofbo", "xofulbe", "xogcuqsu", "xoge",
	"xohe", "xoka", "xokpigi", "xolaje", "xoluca", "xomqi", "xona", "xopzicu",
	"xopzu", "xoqele", "xotiqe", "xovo", "xoynahu", "xoyo", "xozjohgi", "xozo",
	"xozyudo", "xububa", "xuce", "xude", "xugexba", "xugo", "xuki", "xukuyu",
	"xumkosa", "xuna", "xusti", "xuxe", "xuxexu", "xuysuxi", "xuzaco", "yabhiwu",
	"yacmi", "yaduja", "yafpe", "yagiqo", "yahga", "yaje", "yajiho", "yakduxu",
	"yakuta", "yalalo", "yapecro", "yaramo", "yarasla", "yarbopi", "yaseri", "yata",
	"yavana", "yawfo", "yayome", "yazefo", "yebbiptu", "yebi", "yeda", "yediwi",
	"yefo", "yegi", "yejofu", "yejuvti", "yekyune", "yella", "yeloha", "yemase",
	"yemne", "yenu", "yeqi", "yeto", "yeve", "yewede", "yeyite", "yiba",
	"yibanru", "yidgi", "yidgoxa", "yidra", "yidubi", "yifiyne", "yiga", "yigale",
	"yigo", "yihda", "yihguqi", "yijaze", "yijmiysi", "yilego", "yiliylo", "yilufi",
	"yimubi", "yinefe", "yira", "yiroso", "yiwape", "yiwaro", "yiyi", "yiziho",
	"yizijfo", "yobahi", "yodzaxve", "yoffi", "yoge", "yojdu", "yonedi", "yonosa",
	"yosi", "yosogso", "yosvu", "yovexfo", "yoviva", "yovjizu", "yovsaku", "yovujbu",
	"yowodo", "yoyohji", "yoyoqa", "yoze", "yozoyo", "yubi", "yubobra", "yudoya",
	"yufi", "yuhi", "yuli", "yumiji", "yuro", "yuto", "yutu", "yuwalo",
	"yuwudo", "yuxipxu", "yuxuya", "yuyegu", "zabbewa", "zacuho", "zadevu", "zadu",
	"zafe", "zafxeqo", "zagedu", "zajuto", "zala", "zama", "zanu", "zaripki",
	"zarura", "zaserri", "zawupi", "zaxu", "zayalza", "zayexi", "zazu", "zebasi",
	"zeco", "zecufo", "zedi", "zeduge", "zefode", "zegoze", "zeha", "zehu",
	"zeje", "zeme", "zepe", "zeroxa", "zete", "zevafo", "zezoda", "zezve",
	"zibivo", "zibukjo", "zihgo", "zihiri", "zilfabu", "zilulo", "zinjo", "ziqole",
	"ziqoni", "zisi", "ziso", "zisuti", "zitati", "zitfanu", "ziti", "zivilfu",
	"ziyexo", "ziyoja", "zobiyde", "zobu", "zoci", "zode", "zofuta", "zoja",
	"zolki", "zolo", "zolsaxo", "zomi", "zomu", "zoqbocbi", "zori", "zoso",
	"zotxe", "zovgosxi", "zoxa", "zozaxu", "zozere", "zozumu", "zube", "zucdi",
	"zuheka", "zuluda", "zuma", "zuneja", "zupoci", "zupuxu", "zuqenu", "zusa",
	"zusi", "zuvaxo", "zuwe", "zuwwukpu", "zuxtu", "zuyu", "zuzaxo", "zuzdi",
}
